package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductStatusActive     = "active"
	ProductStatusBlocked    = "blocked"
	ProductStatusOutOfStock = "out_of_stock"
)

// GSTRates is the closed set of per-product tax rates.
var GSTRates = []int{0, 5, 12, 18, 28}

const DefaultGSTRate = 18

type Product struct {
	ID            uint                `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name          string              `gorm:"not null"                      json:"name"`
	Description   string              `json:"description"`
	Image         string              `json:"image"`
	Price         decimal.Decimal     `gorm:"type:numeric;not null"         json:"price"`
	DiscountPrice decimal.NullDecimal `gorm:"type:numeric"                  json:"discount_price"`
	GSTRate       int                 `gorm:"not null"                      json:"gst_rate"`
	Stock         int                 `gorm:"not null;default:0"            json:"stock"`
	Status        string              `gorm:"not null;default:active"       json:"status"`
	Tiers         []PriceTier         `gorm:"constraint:OnDelete:CASCADE"   json:"tiers,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// EffectivePrice is the discount price when set, the base price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// PriceTier is a quantity band with its own unit price. A nil MaxQuantity
// means the band is open-ended.
type PriceTier struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   uint            `gorm:"index;not null"           json:"product_id"`
	MinQuantity int             `gorm:"not null"                 json:"min_quantity"`
	MaxQuantity *int            `json:"max_quantity"`
	Price       decimal.Decimal `gorm:"type:numeric;not null"    json:"price"`
}

// Matches reports whether qty falls inside the tier's band.
func (t *PriceTier) Matches(qty int) bool {
	if qty < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == nil || qty <= *t.MaxQuantity
}

type Cart struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID      uint            `gorm:"uniqueIndex;not null"        json:"user_id"`
	Items       []CartItem      `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount decimal.Decimal `gorm:"type:numeric"                json:"total_amount"`
	TotalGST    decimal.Decimal `gorm:"type:numeric"                json:"total_gst"`
	GrandTotal  decimal.Decimal `gorm:"type:numeric"                json:"grand_total"`
	TotalItems  int             `json:"total_items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CartItem carries the unit price actually charged plus the derived
// subtotal and GST for the line. Derived fields are recomputed on every
// cart mutation, never edited in place.
type CartItem struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"  json:"id"`
	CartID       uint            `gorm:"index;not null"            json:"cart_id"`
	ProductID    uint            `gorm:"not null"                  json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	Price        decimal.Decimal `gorm:"type:numeric;not null"     json:"price"`
	Quantity     int             `gorm:"not null;check:quantity>0" json:"quantity"`
	Subtotal     decimal.Decimal `gorm:"type:numeric;not null"     json:"subtotal"`
	GSTRate      int             `gorm:"not null"                  json:"gst_rate"`
	GSTAmount    decimal.Decimal `gorm:"type:numeric;not null"     json:"gst_amount"`
}

// ShippingAddress is embedded into Order.
type ShippingAddress struct {
	Name     string `gorm:"column:ship_name"     json:"name"`
	Phone    string `gorm:"column:ship_phone"    json:"phone"`
	Line1    string `gorm:"column:ship_line1"    json:"line1"`
	Line2    string `gorm:"column:ship_line2"    json:"line2"`
	City     string `gorm:"column:ship_city"     json:"city"`
	State    string `gorm:"column:ship_state"    json:"state"`
	Postcode string `gorm:"column:ship_postcode" json:"postcode"`
}

// Order is a point-in-time copy of a cart. Items are frozen at creation;
// only status, tracking and notes change afterwards. Orders are never
// deleted, only cancelled.
type Order struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderNumber string          `gorm:"uniqueIndex;not null"        json:"order_number"`
	UserID      uint            `gorm:"index;not null"              json:"user_id"`
	Items       []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Shipping    ShippingAddress `gorm:"embedded"                    json:"shipping"`
	TotalAmount decimal.Decimal `gorm:"type:numeric;not null"       json:"total_amount"`
	TotalGST    decimal.Decimal `gorm:"type:numeric;not null"       json:"total_gst"`
	GrandTotal  decimal.Decimal `gorm:"type:numeric;not null"       json:"grand_total"`
	TotalItems  int             `gorm:"not null"                    json:"total_items"`
	Status      OrderStatus     `gorm:"not null;default:pending"    json:"status"`
	AWB         string          `json:"awb,omitempty"`
	Courier     string          `json:"courier,omitempty"`
	TrackingURL string          `json:"tracking_url,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      uint            `gorm:"index;not null"           json:"order_id"`
	ProductID    uint            `gorm:"not null"                 json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	Price        decimal.Decimal `gorm:"type:numeric;not null"    json:"price"`
	Quantity     int             `gorm:"not null"                 json:"quantity"`
	Subtotal     decimal.Decimal `gorm:"type:numeric;not null"    json:"subtotal"`
	GSTRate      int             `gorm:"not null"                 json:"gst_rate"`
	GSTAmount    decimal.Decimal `gorm:"type:numeric;not null"    json:"gst_amount"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
