package service

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solara-store/shop/internal/models"
)

func TestOrderService_Create_FromCart(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{
		Name:          "Steel Bottle",
		Price:         dec("1000"),
		DiscountPrice: decimal.NewNullDecimal(dec("900")),
		GSTRate:       18,
		Stock:         5,
	})
	_, err := carts.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	order, err := orders.Create(ctx, 1, testShipping())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderNumber, "SOL-"))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(dec("900")))
	assert.True(t, order.TotalAmount.Equal(dec("1800")))
	assert.True(t, order.TotalGST.Equal(dec("324")))
	assert.True(t, order.GrandTotal.Equal(dec("2124")))
	assert.Equal(t, 2, order.TotalItems)
	assert.Equal(t, "Bengaluru", order.Shipping.City)

	assert.Equal(t, 3, fetchProduct(t, r, p.ID).Stock)

	cart, _, err := carts.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.GrandTotal.IsZero())
}

func TestOrderService_Create_Validation(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	_, err := orders.Create(ctx, 1, models.ShippingAddress{})
	assert.ErrorIs(t, err, ErrValidation)

	// empty cart
	_, err = orders.Create(ctx, 1, testShipping())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_Create_AllOrNothing(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	a := seedProduct(t, r, &models.Product{Name: "A", Price: dec("100"), GSTRate: 18, Stock: 10})
	b := seedProduct(t, r, &models.Product{Name: "B", Price: dec("200"), GSTRate: 18, Stock: 1})

	_, err := carts.AddItem(ctx, 1, a.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, 1, b.ID, 1)
	require.NoError(t, err)

	// stock moved underneath after the line went into the cart
	require.NoError(t, r.DB.Model(&models.Product{}).
		Where("id = ?", b.ID).
		Update("stock", 0).Error)

	_, err = orders.Create(ctx, 1, testShipping())
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// nothing was written
	assert.Equal(t, 10, fetchProduct(t, r, a.ID).Stock)
	var count int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	cart, _, err := carts.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestOrderService_Create_FlipsProductOutOfStock(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{Name: "Last Units", Price: dec("75"), GSTRate: 5, Stock: 3})
	_, err := carts.AddItem(ctx, 1, p.ID, 3)
	require.NoError(t, err)

	_, err = orders.Create(ctx, 1, testShipping())
	require.NoError(t, err)

	got := fetchProduct(t, r, p.ID)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, models.ProductStatusOutOfStock, got.Status)
}

func TestOrderService_Cancel_RestoresStock(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{Name: "Kettle", Price: dec("500"), GSTRate: 18, Stock: 2})
	_, err := carts.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	order, err := orders.Create(ctx, 1, testShipping())
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusOutOfStock, fetchProduct(t, r, p.ID).Status)

	cancelled, skipped, err := orders.Cancel(ctx, order.ID, 1, false)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	got := fetchProduct(t, r, p.ID)
	assert.Equal(t, 2, got.Stock)
	assert.Equal(t, models.ProductStatusActive, got.Status)

	// cancelled is terminal
	_, _, err = orders.Cancel(ctx, order.ID, 1, false)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestOrderService_Cancel_FlipIsConditional(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{Name: "Heater", Price: dec("3000"), GSTRate: 18, Stock: 4})
	_, err := carts.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	order, err := orders.Create(ctx, 1, testShipping())
	require.NoError(t, err)
	require.Equal(t, 2, fetchProduct(t, r, p.ID).Stock)

	// first flip wins, second loses
	ok, err := r.MarkCancelled(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.MarkCancelled(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// a cancel arriving after the flip must not restore stock again
	_, _, err = orders.Cancel(ctx, order.ID, 1, false)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 2, fetchProduct(t, r, p.ID).Stock)
}

func TestOrderService_Cancel_Permissions(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{Name: "Fan", Price: dec("1500"), GSTRate: 18, Stock: 20})
	_, err := carts.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	order, err := orders.Create(ctx, 1, testShipping())
	require.NoError(t, err)

	// another customer cannot touch it
	_, _, err = orders.Cancel(ctx, order.ID, 2, false)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// past pending the owner is locked out, admin is not
	_, err = orders.UpdateStatus(ctx, order.ID, models.OrderStatusConfirmed)
	require.NoError(t, err)

	_, _, err = orders.Cancel(ctx, order.ID, 1, false)
	assert.ErrorIs(t, err, ErrInvalidState)

	cancelled, _, err := orders.Cancel(ctx, order.ID, 0, true)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 20, fetchProduct(t, r, p.ID).Stock)
}

func TestOrderService_Cancel_SkipsDeletedProducts(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	gone := seedProduct(t, r, &models.Product{Name: "Gone", Price: dec("10"), GSTRate: 5, Stock: 5})
	kept := seedProduct(t, r, &models.Product{Name: "Kept", Price: dec("20"), GSTRate: 5, Stock: 5})

	_, err := carts.AddItem(ctx, 1, gone.ID, 1)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, 1, kept.ID, 1)
	require.NoError(t, err)
	order, err := orders.Create(ctx, 1, testShipping())
	require.NoError(t, err)

	require.NoError(t, r.DeleteProduct(ctx, gone.ID))

	cancelled, skipped, err := orders.Cancel(ctx, order.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, []uint{gone.ID}, skipped)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, fetchProduct(t, r, kept.ID).Stock)
}

func TestOrderService_UpdateStatus_ForwardOnly(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{Name: "Desk", Price: dec("4000"), GSTRate: 28, Stock: 4})
	_, err := carts.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	order, err := orders.Create(ctx, 1, testShipping())
	require.NoError(t, err)

	// skipping intermediate states is allowed
	got, err := orders.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)

	_, err = orders.UpdateStatus(ctx, order.ID, models.OrderStatusPending)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = orders.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = orders.UpdateStatus(ctx, order.ID, "misplaced")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = orders.UpdateStatus(ctx, 9999, models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = orders.Cancel(ctx, order.ID, 0, true)
	require.NoError(t, err)
	_, err = orders.UpdateStatus(ctx, order.ID, models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestOrderService_AddTracking(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{Name: "Chair", Price: dec("2500"), GSTRate: 18, Stock: 8})
	_, err := carts.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	order, err := orders.Create(ctx, 1, testShipping())
	require.NoError(t, err)

	_, err = orders.AddTracking(ctx, order.ID, "", "delhivery")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := orders.AddTracking(ctx, order.ID, "AWB123456", "delhivery")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)
	assert.Equal(t, "AWB123456", got.AWB)
	assert.Contains(t, got.TrackingURL, "AWB123456")

	stored, err := orders.Get(ctx, order.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, stored.Status)
	assert.Equal(t, "delhivery", stored.Courier)

	_, _, err = orders.Cancel(ctx, order.ID, 0, true)
	require.NoError(t, err)
	_, err = orders.AddTracking(ctx, order.ID, "AWB999", "bluedart")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestGenerateOrderNumber_Format(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`^SOL-[0-9A-Z]+-[0-9A-Z]{4}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n := generateOrderNumber()
		assert.Regexp(t, re, n)
		seen[n] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestOrderService_Get_AccessControl(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{Name: "Rug", Price: dec("900"), GSTRate: 12, Stock: 6})
	_, err := carts.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	order, err := orders.Create(ctx, 1, testShipping())
	require.NoError(t, err)

	_, err = orders.Get(ctx, order.ID, 1, false)
	assert.NoError(t, err)

	_, err = orders.Get(ctx, order.ID, 2, false)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = orders.Get(ctx, order.ID, 2, true)
	assert.NoError(t, err)

	_, err = orders.Get(ctx, 9999, 1, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_ListForUser(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	carts := &CartService{Repo: r}
	orders := &OrderService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{Name: "Mug", Price: dec("150"), GSTRate: 12, Stock: 30})
	for _, uid := range []uint{1, 1, 2} {
		_, err := carts.AddItem(ctx, uid, p.ID, 1)
		require.NoError(t, err)
		_, err = orders.Create(ctx, uid, testShipping())
		require.NoError(t, err)
	}

	mine, total, err := orders.ListForUser(ctx, 1, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, mine, 2)

	all, total, err := orders.ListAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)
}
