package repo

import (
	"context"
	"time"

	"github.com/solara-store/shop/internal/models"
)

func (r *GormRepo) GetCartByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) CreateCart(ctx context.Context, cart *models.Cart) error {
	return r.DB.WithContext(ctx).Create(cart).Error
}

// ReplaceCart persists the cart with its item collection swapped wholesale.
// Lines are never updated in place; the old set is dropped and the current
// one written out, which keeps derived totals and items in step.
func (r *GormRepo) ReplaceCart(ctx context.Context, cart *models.Cart) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		if err := tx.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
		}
		if len(cart.Items) > 0 {
			if err := tx.DB.Create(&cart.Items).Error; err != nil {
				return err
			}
		}
		return tx.DB.Model(&models.Cart{}).Where("id = ?", cart.ID).
			Updates(map[string]any{
				"total_amount": cart.TotalAmount,
				"total_gst":    cart.TotalGST,
				"grand_total":  cart.GrandTotal,
				"total_items":  cart.TotalItems,
				"updated_at":   time.Now(),
			}).Error
	})
}
