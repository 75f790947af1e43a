// Package pricing computes unit prices, GST and cart totals. Every function
// here is pure: no persistence, no clock, no I/O.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/solara-store/shop/internal/models"
)

var hundred = decimal.NewFromInt(100)

// PriceForQuantity resolves the unit price for qty units of p. With no tiers
// the effective price applies. Among matching tiers the one with the largest
// MinQuantity wins, so overlapping bands resolve to the most specific tier.
// No matching tier falls back to the effective price. Total for all qty;
// rejecting qty <= 0 is the caller's job.
func PriceForQuantity(p *models.Product, qty int) decimal.Decimal {
	var best *models.PriceTier
	for i := range p.Tiers {
		t := &p.Tiers[i]
		if !t.Matches(qty) {
			continue
		}
		if best == nil || t.MinQuantity > best.MinQuantity {
			best = t
		}
	}
	if best == nil {
		return p.EffectivePrice()
	}
	return best.Price
}

// GSTAmount is base * rate / 100, rounded half away from zero to 2 decimals.
func GSTAmount(base decimal.Decimal, rate int) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(int64(rate))).Div(hundred).Round(2)
}

// SavingsPercent is how much cheaper the tier price for qty is versus the
// effective price, as a whole percentage. Zero when the tier price is not
// actually cheaper or the effective price is zero.
func SavingsPercent(p *models.Product, qty int) int {
	effective := p.EffectivePrice()
	if effective.IsZero() {
		return 0
	}
	tier := PriceForQuantity(p, qty)
	if tier.GreaterThanOrEqual(effective) {
		return 0
	}
	pct := effective.Sub(tier).Div(effective).Mul(hundred).Round(0)
	return int(pct.IntPart())
}

// BuildLine prices qty units of p into a cart line with derived subtotal and
// GST filled in.
func BuildLine(p *models.Product, qty int) models.CartItem {
	unit := PriceForQuantity(p, qty)
	subtotal := unit.Mul(decimal.NewFromInt(int64(qty)))
	return models.CartItem{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductImage: p.Image,
		Price:        unit,
		Quantity:     qty,
		Subtotal:     subtotal,
		GSTRate:      p.GSTRate,
		GSTAmount:    GSTAmount(subtotal, p.GSTRate),
	}
}

// Totals sums line subtotals, GST and quantities into the cart-level fields.
// An empty slice yields all zeroes. Negative sums from malformed stored lines
// are clamped to zero so a bad row never poisons the cart.
func Totals(items []models.CartItem) (amount, gst, grand decimal.Decimal, count int) {
	for i := range items {
		amount = amount.Add(items[i].Subtotal)
		gst = gst.Add(items[i].GSTAmount)
		count += items[i].Quantity
	}
	amount = clampZero(amount)
	gst = clampZero(gst)
	return amount, gst, amount.Add(gst), count
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
