package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo mayorista de un tenant.
// Stock es el valor vivo; toda variación queda además registrada en InventoryMovement.
type Product struct {
	ID          int64
	TenantID    string
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal // precio de lista, siempre > 0
	Stock       int             // nunca negativo (CHECK en la tabla)
	SKU         *string         // único por tenant, opcional
	HSN         string
	TaxRate     decimal.Decimal // porcentaje 0–100
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLowStock indica si el stock está en o por debajo del umbral.
func (p *Product) IsLowStock(threshold int) bool {
	return p.Stock <= threshold
}
