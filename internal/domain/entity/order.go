package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Orígenes de pedido.
const (
	OrderSourcePublic = "PUBLIC"
	OrderSourcePOS    = "POS"
)

// Estados de pedido.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// orderTransitions estados destino permitidos desde cada estado (además del no-op).
var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted: {OrderStatusCancelled},
	OrderStatusCancelled: {},
}

// Order pedido con sus líneas. Total = Σ(price × quantity) de sus ítems.
type Order struct {
	ID         int64
	TenantID   string
	CustomerID int64
	Source     string
	Status     string
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Customer *Customer
	Items    []*OrderItem
}

// OrderItem línea de pedido; Price es una instantánea tomada al crear el pedido.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal

	Product *Product
}

// Subtotal precio × cantidad de la línea.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// IsValidOrderStatus indica si s es un estado conocido.
func IsValidOrderStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransition indica si from → to es una transición válida. from == to se trata aparte (no-op).
func CanTransition(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsDeletable solo los pedidos pendientes o cancelados pueden eliminarse.
func (o *Order) IsDeletable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusCancelled
}

// ComputeTotal suma los subtotales de las líneas con aritmética decimal exacta.
func ComputeTotal(items []*OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
