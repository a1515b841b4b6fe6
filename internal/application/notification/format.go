package notification

import (
	"fmt"
	"html"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Kolkata disponible aunque la imagen no traiga zoneinfo

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

var (
	kolkata = mustLoadLocation("Asia/Kolkata")
	printer = message.NewPrinter(language.MustParse("en-IN"))
)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// formatRupees importe con separador de miles y dos decimales, ej. ₹1,234.50.
func formatRupees(d decimal.Decimal) string {
	return "₹" + printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// FormatOrderNotification mensaje HTML de pedido nuevo. Los textos del cliente se escapan.
// El total se recalcula a partir de las líneas.
func FormatOrderNotification(order *entity.Order, customer *entity.Customer, items []*entity.OrderItem, source string) string {
	if customer == nil {
		customer = &entity.Customer{}
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		title := fmt.Sprintf("Product #%d", it.ProductID)
		if it.Product != nil {
			title = it.Product.Title
		}
		lines = append(lines, fmt.Sprintf("• %s (x%d) - %s", html.EscapeString(title), it.Quantity, formatRupees(it.Subtotal())))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🛒 <b>New %s Order #%d</b>\n\n", source, order.ID)
	fmt.Fprintf(&b, "👤 <b>Customer:</b> %s\n", html.EscapeString(customer.Name))
	fmt.Fprintf(&b, "📞 <b>Phone:</b> %s\n", html.EscapeString(customer.Phone))
	if customer.Notes != "" {
		fmt.Fprintf(&b, "📝 <b>Notes:</b> %s\n", html.EscapeString(customer.Notes))
	}
	fmt.Fprintf(&b, "\n📦 <b>Items:</b>\n%s\n\n", strings.Join(lines, "\n"))
	fmt.Fprintf(&b, "💰 <b>Total:</b> %s\n", formatRupees(entity.ComputeTotal(items)))
	fmt.Fprintf(&b, "⏰ <b>Time:</b> %s", order.CreatedAt.In(kolkata).Format("02/01/06, 3:04 pm"))
	return b.String()
}

// FormatLowStockNotification alerta de stock bajo de un producto.
func FormatLowStockNotification(p *entity.Product) string {
	sku := "N/A"
	if p.SKU != nil && *p.SKU != "" {
		sku = *p.SKU
	}
	category := p.Category
	if category == "" {
		category = "Uncategorized"
	}
	return fmt.Sprintf("⚠️ <b>LOW STOCK ALERT</b>\n\n"+
		"📦 <b>Product:</b> %s\n"+
		"📊 <b>Remaining Stock:</b> %d\n"+
		"🆔 <b>SKU:</b> %s\n"+
		"🏷️ <b>Category:</b> %s",
		html.EscapeString(p.Title), p.Stock, html.EscapeString(sku), html.EscapeString(category))
}
