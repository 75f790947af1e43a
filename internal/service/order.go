package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/solara-store/shop/internal/logging"
	"github.com/solara-store/shop/internal/models"
	"github.com/solara-store/shop/internal/pricing"
	"github.com/solara-store/shop/internal/repo"
	"github.com/solara-store/shop/internal/shipping"
)

type OrderService struct {
	Repo *repo.GormRepo
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func generateOrderNumber() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return fmt.Sprintf("SOL-%s-%s", ts, randBase36(4))
}

// randBase36 draws uniformly with rejection sampling; 252 is the largest
// multiple of 36 below 256.
func randBase36(n int) string {
	out := make([]byte, 0, n)
	var b [1]byte
	for len(out) < n {
		rand.Read(b[:])
		if b[0] >= 252 {
			continue
		}
		out = append(out, base36[int(b[0])%len(base36)])
	}
	return string(out)
}

// Create turns the user's cart into a pending order inside one transaction:
// stock is validated for every line before anything is written, each product's
// stock is decremented with a conditional update, products hitting zero flip
// to out_of_stock, and the cart is cleared. Any failure rolls everything back.
func (s *OrderService) Create(ctx context.Context, userID uint, ship models.ShippingAddress) (*models.Order, error) {
	if ship.Name == "" || ship.Phone == "" || ship.Line1 == "" || ship.City == "" || ship.Postcode == "" {
		return nil, fmt.Errorf("shipping name, phone, line1, city and postcode required: %w", ErrValidation)
	}

	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.GetCartByUser(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(cart.Items) == 0) {
			return fmt.Errorf("cart is empty: %w", ErrValidation)
		}
		if err != nil {
			return err
		}

		// All-or-nothing: every line is checked under a row lock before
		// any stock moves.
		products := make(map[uint]*models.Product, len(cart.Items))
		for _, line := range cart.Items {
			p, err := tx.GetProductForUpdate(ctx, line.ProductID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %d: %w", line.ProductID, ErrNotFound)
			}
			if err != nil {
				return err
			}
			if p.Stock < line.Quantity {
				return fmt.Errorf("product %d has %d in stock, want %d: %w",
					line.ProductID, p.Stock, line.Quantity, ErrInsufficientStock)
			}
			products[line.ProductID] = p
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			items = append(items, models.OrderItem{
				ProductID:    line.ProductID,
				ProductName:  line.ProductName,
				ProductImage: line.ProductImage,
				Price:        line.Price,
				Quantity:     line.Quantity,
				Subtotal:     line.Subtotal,
				GSTRate:      line.GSTRate,
				GSTAmount:    line.GSTAmount,
			})
		}
		amount, gst, grand, count := pricing.Totals(cart.Items)

		order = &models.Order{
			OrderNumber: generateOrderNumber(),
			UserID:      userID,
			Items:       items,
			Shipping:    ship,
			TotalAmount: amount,
			TotalGST:    gst,
			GrandTotal:  grand,
			TotalItems:  count,
			Status:      models.OrderStatusPending,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, line := range cart.Items {
			ok, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("product %d stock changed underneath: %w",
					line.ProductID, ErrInsufficientStock)
			}
			if products[line.ProductID].Stock-line.Quantity <= 0 {
				if err := tx.UpdateProductStatus(ctx, line.ProductID, models.ProductStatusOutOfStock); err != nil {
					return err
				}
			}
		}

		cart.Items = nil
		refreshTotals(cart)
		return tx.ReplaceCart(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel moves the order to cancelled and gives every line's stock back.
// Customers may only cancel pending orders; admins may cancel from any
// non-cancelled state. Restoration is best-effort per line: lines whose
// product has since been deleted are skipped and their ids returned.
func (s *OrderService) Cancel(ctx context.Context, orderID, userID uint, isAdmin bool) (*models.Order, []uint, error) {
	var (
		order   *models.Order
		skipped []uint
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.GetOrderForUpdate(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		if !isAdmin && order.UserID != userID {
			return fmt.Errorf("order %d belongs to another user: %w", orderID, ErrAccessDenied)
		}
		if order.Status == models.OrderStatusCancelled {
			return fmt.Errorf("order %d is already cancelled: %w", orderID, ErrInvalidState)
		}
		if !isAdmin && order.Status != models.OrderStatusPending {
			return fmt.Errorf("only pending orders can be cancelled, order %d is %s: %w",
				orderID, order.Status, ErrInvalidState)
		}

		// Win the flip before touching stock: if a concurrent cancel got
		// here first, its restore already ran and ours must not.
		ok, err := tx.MarkCancelled(ctx, orderID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("order %d is already cancelled: %w", orderID, ErrInvalidState)
		}
		order.Status = models.OrderStatusCancelled

		for _, line := range order.Items {
			p, err := tx.GetProductForUpdate(ctx, line.ProductID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				skipped = append(skipped, line.ProductID)
				continue
			}
			if err != nil {
				return err
			}
			if _, err := tx.RestoreStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			if p.Status == models.ProductStatusOutOfStock && p.Stock+line.Quantity > 0 {
				if err := tx.UpdateProductStatus(ctx, line.ProductID, models.ProductStatusActive); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(skipped) > 0 {
		l := logging.FromContext(ctx).With("service", "order.cancel")
		l.Warn("stock_restore_skipped", "order_id", orderID, "product_ids", skipped)
	}
	return order, skipped, nil
}

// AddTracking attaches the AWB and courier and forces the order to shipped.
// The jump to shipped skips the usual forward-only check on purpose: tracking
// assignment is what marks an order shipped.
func (s *OrderService) AddTracking(ctx context.Context, orderID uint, awb, courier string) (*models.Order, error) {
	if awb == "" || courier == "" {
		return nil, fmt.Errorf("awb and courier required: %w", ErrValidation)
	}

	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.GetOrderForUpdate(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusCancelled {
			return fmt.Errorf("order %d is cancelled: %w", orderID, ErrInvalidState)
		}

		order.AWB = awb
		order.Courier = courier
		order.TrackingURL = shipping.TrackingURL(courier, awb)
		order.Status = models.OrderStatusShipped
		return tx.UpdateOrderFields(ctx, order.ID, map[string]any{
			"awb":          order.AWB,
			"courier":      order.Courier,
			"tracking_url": order.TrackingURL,
			"status":       order.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus applies a forward transition through the status table.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", next, ErrValidation)
	}

	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.GetOrderForUpdate(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusCancelled {
			return fmt.Errorf("order %d is cancelled: %w", orderID, ErrInvalidState)
		}
		if !order.Status.CanTransition(next) {
			return fmt.Errorf("cannot move order %d from %s to %s: %w",
				orderID, order.Status, next, ErrInvalidState)
		}

		if err := tx.UpdateOrderStatus(ctx, orderID, next); err != nil {
			return err
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID, userID uint, isAdmin bool) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, fmt.Errorf("order %d belongs to another user: %w", orderID, ErrAccessDenied)
	}
	return order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Order, int64, error) {
	return s.Repo.ListOrdersByUser(ctx, userID, offset, limit)
}

func (s *OrderService) ListAll(ctx context.Context, offset, limit int) ([]models.Order, int64, error) {
	return s.Repo.ListOrders(ctx, offset, limit)
}
