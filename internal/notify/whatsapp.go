// Package notify builds WhatsApp deep links for order and contact messages.
// Pure string formatting; nothing here talks to WhatsApp.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/solara-store/shop/internal/models"
)

// WhatsAppLink returns a https://wa.me deep link that opens a chat with
// number prefilled with message. Everything but digits is stripped from the
// number.
func WhatsAppLink(number, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(message)
}

// OrderMessage renders the plain-text order summary used in the deep link.
func OrderMessage(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s\n", order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%s x%d = %s\n", item.ProductName, item.Quantity, item.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s (incl. GST %s)", order.GrandTotal.StringFixed(2), order.TotalGST.StringFixed(2))
	return b.String()
}
