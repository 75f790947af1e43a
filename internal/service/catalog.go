package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/solara-store/shop/internal/models"
	"github.com/solara-store/shop/internal/repo"
)

type CatalogService struct {
	Repo *repo.GormRepo
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return p, err
}

func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	return s.Repo.ListProducts(ctx, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = models.ProductStatusActive
	}
	return s.Repo.CreateProduct(ctx, p)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if _, err := s.Repo.GetProduct(ctx, p.ID); errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
	} else if err != nil {
		return err
	}
	return s.Repo.SaveProduct(ctx, p)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.Repo.DeleteProduct(ctx, id)
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("name required: %w", ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price must be >= 0: %w", ErrValidation)
	}
	if p.DiscountPrice.Valid && p.DiscountPrice.Decimal.GreaterThanOrEqual(p.Price) {
		return fmt.Errorf("discount price must be below price: %w", ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock must be >= 0: %w", ErrValidation)
	}
	if !validGSTRate(p.GSTRate) {
		return fmt.Errorf("gst rate must be one of %v: %w", models.GSTRates, ErrValidation)
	}
	return validateTiers(p.Tiers)
}

func validGSTRate(rate int) bool {
	for _, r := range models.GSTRates {
		if r == rate {
			return true
		}
	}
	return false
}

// validateTiers rejects malformed or overlapping quantity bands at write
// time, so tier selection at read time never has to resolve an ambiguity.
func validateTiers(tiers []models.PriceTier) error {
	sorted := make([]models.PriceTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinQuantity < sorted[j].MinQuantity })

	for i := range sorted {
		t := &sorted[i]
		if t.MinQuantity < 1 {
			return fmt.Errorf("tier min quantity must be >= 1: %w", ErrValidation)
		}
		if t.MaxQuantity != nil && *t.MaxQuantity < t.MinQuantity {
			return fmt.Errorf("tier max quantity %d below min %d: %w", *t.MaxQuantity, t.MinQuantity, ErrValidation)
		}
		if t.Price.IsNegative() {
			return fmt.Errorf("tier price must be >= 0: %w", ErrValidation)
		}
		if i > 0 {
			prev := &sorted[i-1]
			if prev.MaxQuantity == nil || *prev.MaxQuantity >= t.MinQuantity {
				return fmt.Errorf("tiers starting at %d and %d overlap: %w",
					prev.MinQuantity, t.MinQuantity, ErrValidation)
			}
		}
	}
	return nil
}
