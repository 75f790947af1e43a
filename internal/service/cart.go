package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/solara-store/shop/internal/logging"
	"github.com/solara-store/shop/internal/models"
	"github.com/solara-store/shop/internal/pricing"
	"github.com/solara-store/shop/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

// GetCart returns the user's cart, creating an empty one on first read.
// Every line is reconciled against the current catalog: lines whose price or
// GST rate drifted are rebuilt, lines whose product vanished are dropped.
// The ids of dropped products are returned so callers can surface them.
func (s *CartService) GetCart(ctx context.Context, userID uint) (*models.Cart, []uint, error) {
	cart, err := s.Repo.GetCartByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = &models.Cart{UserID: userID}
		if err := s.Repo.CreateCart(ctx, cart); err != nil {
			return nil, nil, err
		}
		return cart, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var (
		reconciled []models.CartItem
		dropped    []uint
		drifted    bool
	)
	for i := range cart.Items {
		line := cart.Items[i]
		p, err := s.Repo.GetProduct(ctx, line.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			dropped = append(dropped, line.ProductID)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		fresh := pricing.BuildLine(p, line.Quantity)
		if !fresh.Price.Equal(line.Price) || fresh.GSTRate != line.GSTRate {
			drifted = true
		}
		reconciled = append(reconciled, fresh)
	}

	if len(dropped) == 0 && !drifted {
		return cart, nil, nil
	}

	l := logging.FromContext(ctx).With("service", "cart.reconcile")
	l.Info("cart_rebuilt", "user_id", userID, "dropped", dropped, "drifted", drifted)

	cart.Items = reconciled
	refreshTotals(cart)
	if err := s.Repo.ReplaceCart(ctx, cart); err != nil {
		return nil, nil, err
	}
	return cart, dropped, nil
}

// AddItem merges quantity into an existing line for the product, or inserts a
// new line. The unit price is re-derived from the merged total quantity, not
// just added, so bulk accumulation reaches its tier.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, qty int) (*models.Cart, error) {
	if productID == 0 {
		return nil, fmt.Errorf("product_id required: %w", ErrValidation)
	}
	if qty < 1 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}

	var cart *models.Cart
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		cart, err = s.loadOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		p, err := tx.GetProduct(ctx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if p.Status == models.ProductStatusBlocked {
			return fmt.Errorf("product %d is blocked: %w", productID, ErrValidation)
		}

		total := qty
		idx := -1
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				total += cart.Items[i].Quantity
				idx = i
				break
			}
		}
		if total > p.Stock {
			return fmt.Errorf("product %d has %d in stock, want %d: %w",
				productID, p.Stock, total, ErrInsufficientStock)
		}

		line := pricing.BuildLine(p, total)
		if idx >= 0 {
			cart.Items[idx] = line
		} else {
			cart.Items = append(cart.Items, line)
		}
		refreshTotals(cart)
		return tx.ReplaceCart(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// SetItemQuantity reprices the line at the absolute new quantity. A quantity
// of zero or less removes the line.
func (s *CartService) SetItemQuantity(ctx context.Context, userID, productID uint, qty int) (*models.Cart, error) {
	if qty <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	var cart *models.Cart
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		cart, err = s.loadOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		idx := -1
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("product %d not in cart: %w", productID, ErrNotFound)
		}

		p, err := tx.GetProduct(ctx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if qty > p.Stock {
			return fmt.Errorf("product %d has %d in stock, want %d: %w",
				productID, p.Stock, qty, ErrInsufficientStock)
		}

		cart.Items[idx] = pricing.BuildLine(p, qty)
		refreshTotals(cart)
		return tx.ReplaceCart(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	var cart *models.Cart
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		cart, err = s.loadOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		kept := cart.Items[:0]
		found := false
		for _, line := range cart.Items {
			if line.ProductID == productID {
				found = true
				continue
			}
			kept = append(kept, line)
		}
		if !found {
			return fmt.Errorf("product %d not in cart: %w", productID, ErrNotFound)
		}
		cart.Items = kept
		refreshTotals(cart)
		return tx.ReplaceCart(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart *models.Cart
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		cart, err = s.loadOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		cart.Items = nil
		refreshTotals(cart)
		return tx.ReplaceCart(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) loadOrCreateCart(ctx context.Context, tx *repo.GormRepo, userID uint) (*models.Cart, error) {
	cart, err := tx.GetCartByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = &models.Cart{UserID: userID}
		if err := tx.CreateCart(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}
	return cart, err
}

func refreshTotals(cart *models.Cart) {
	cart.TotalAmount, cart.TotalGST, cart.GrandTotal, cart.TotalItems = pricing.Totals(cart.Items)
}
