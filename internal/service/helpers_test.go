package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/solara-store/shop/internal/models"
	"github.com/solara-store/shop/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// one connection so every query sees the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.PriceTier{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
		&models.User{}, &models.RefreshToken{},
	))
	return repo.New(db)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int { return &v }

func seedProduct(t *testing.T, r *repo.GormRepo, p *models.Product) *models.Product {
	if p.Status == "" {
		p.Status = models.ProductStatusActive
	}
	require.NoError(t, r.DB.Create(p).Error)
	return p
}

func fetchProduct(t *testing.T, r *repo.GormRepo, id uint) *models.Product {
	var p models.Product
	require.NoError(t, r.DB.First(&p, id).Error)
	return &p
}

func testShipping() models.ShippingAddress {
	return models.ShippingAddress{
		Name:     "Asha Rao",
		Phone:    "9800000000",
		Line1:    "12 MG Road",
		City:     "Bengaluru",
		State:    "KA",
		Postcode: "560001",
	}
}
