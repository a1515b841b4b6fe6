package entity

import (
	"strconv"
	"time"
)

// Motivos de movimiento de inventario.
const (
	MovementReasonSale                = "sale"
	MovementReasonAdjustment          = "adjustment"
	MovementReasonCancellationRestock = "cancellation-restock"
)

// InventoryMovement entrada inmutable del libro de inventario.
// Change es con signo: negativo para ventas, positivo para reposiciones.
type InventoryMovement struct {
	ID        string
	TenantID  string
	ProductID int64
	Reason    string
	Change    int
	Reference string // ej. "order:42"
	CreatedAt time.Time
}

// OrderReference referencia estándar de un movimiento ligado a un pedido.
func OrderReference(orderID int64) string {
	return "order:" + strconv.FormatInt(orderID, 10)
}
