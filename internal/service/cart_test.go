package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solara-store/shop/internal/models"
)

func TestCartService_GetCart_CreatesLazily(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	cart, dropped, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	assert.NotZero(t, cart.ID)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.GrandTotal.IsZero())

	again, _, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCartService_AddItem_Totals(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{
		Name:          "Steel Bottle",
		Price:         dec("1000"),
		DiscountPrice: decimal.NewNullDecimal(dec("900")),
		GSTRate:       18,
		Stock:         5,
	})

	cart, err := svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	line := cart.Items[0]
	assert.True(t, line.Price.Equal(dec("900")), "line price %s", line.Price)
	assert.True(t, line.Subtotal.Equal(dec("1800")))
	assert.True(t, line.GSTAmount.Equal(dec("324")))
	assert.True(t, cart.TotalAmount.Equal(dec("1800")))
	assert.True(t, cart.TotalGST.Equal(dec("324")))
	assert.True(t, cart.GrandTotal.Equal(dec("2124")))
	assert.Equal(t, 2, cart.TotalItems)
}

func TestCartService_AddItem_MergeRepricesAtMergedQuantity(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{
		Name:    "Copy Paper",
		Price:   dec("100"),
		GSTRate: 18,
		Stock:   100,
		Tiers: []models.PriceTier{
			{MinQuantity: 12, Price: dec("80")},
		},
	})

	cart, err := svc.AddItem(ctx, 1, p.ID, 5)
	require.NoError(t, err)
	assert.True(t, cart.Items[0].Price.Equal(dec("100")))

	cart, err = svc.AddItem(ctx, 1, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 15, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].Price.Equal(dec("80")), "merged quantity crosses the tier")
	assert.True(t, cart.Items[0].Subtotal.Equal(dec("1200")))
}

func TestCartService_AddItem_Rejections(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	active := seedProduct(t, r, &models.Product{Name: "Live", Price: dec("50"), GSTRate: 5, Stock: 3})
	blocked := seedProduct(t, r, &models.Product{
		Name: "Pulled", Price: dec("50"), GSTRate: 5, Stock: 3,
		Status: models.ProductStatusBlocked,
	})

	_, err := svc.AddItem(ctx, 1, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddItem(ctx, 1, blocked.ID, 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem(ctx, 1, active.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem(ctx, 1, active.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// merged quantity over stock fails even though each add alone fits
	_, err = svc.AddItem(ctx, 1, active.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 1, active.ID, 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCartService_SetItemQuantity(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{
		Name:    "Notebook",
		Price:   dec("60"),
		GSTRate: 12,
		Stock:   50,
		Tiers: []models.PriceTier{
			{MinQuantity: 10, MaxQuantity: intPtr(49), Price: dec("48")},
		},
	})

	_, err := svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	cart, err := svc.SetItemQuantity(ctx, 1, p.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].Price.Equal(dec("48")))

	_, err = svc.SetItemQuantity(ctx, 1, p.ID, 51)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	cart, err = svc.SetItemQuantity(ctx, 1, p.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.GrandTotal.IsZero())

	_, err = svc.SetItemQuantity(ctx, 1, 9999, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	a := seedProduct(t, r, &models.Product{Name: "A", Price: dec("10"), GSTRate: 5, Stock: 10})
	b := seedProduct(t, r, &models.Product{Name: "B", Price: dec("20"), GSTRate: 5, Stock: 10})

	_, err := svc.AddItem(ctx, 1, a.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 1, b.ID, 1)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, 1, a.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, b.ID, cart.Items[0].ProductID)

	_, err = svc.RemoveItem(ctx, 1, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cart, err = svc.Clear(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalItems)
	assert.True(t, cart.TotalAmount.IsZero())
	assert.True(t, cart.TotalGST.IsZero())
	assert.True(t, cart.GrandTotal.IsZero())
}

func TestCartService_GetCart_RepricesDriftedLines(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	p := seedProduct(t, r, &models.Product{Name: "Lamp", Price: dec("500"), GSTRate: 18, Stock: 10})
	_, err := svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	require.NoError(t, r.DB.Model(&models.Product{}).
		Where("id = ?", p.ID).
		Update("price", dec("450")).Error)

	cart, dropped, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].Price.Equal(dec("450")))
	assert.True(t, cart.Items[0].Subtotal.Equal(dec("900")))
	assert.True(t, cart.GrandTotal.Equal(dec("1062")))
}

func TestCartService_GetCart_DropsVanishedProducts(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	gone := seedProduct(t, r, &models.Product{Name: "Gone", Price: dec("30"), GSTRate: 5, Stock: 10})
	kept := seedProduct(t, r, &models.Product{Name: "Kept", Price: dec("40"), GSTRate: 5, Stock: 10})

	_, err := svc.AddItem(ctx, 1, gone.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 1, kept.ID, 2)
	require.NoError(t, err)

	require.NoError(t, r.DeleteProduct(ctx, gone.ID))

	cart, dropped, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{gone.ID}, dropped)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, kept.ID, cart.Items[0].ProductID)
	assert.True(t, cart.TotalAmount.Equal(dec("80")))
}
