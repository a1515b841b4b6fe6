package entity

import "time"

// Tipos de cliente.
const (
	CustomerTypePermanent = "PERMANENT" // creado desde el punto de venta
	CustomerTypeTemporary = "TEMPORARY" // creado desde la tienda pública
)

// Customer representa un comprador. Phone es la clave de identidad para el upsert.
type Customer struct {
	ID        int64
	TenantID  string
	Name      string
	Phone     string
	Type      string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomerTypeForSource deriva el tipo de cliente a crear según el origen del pedido.
func CustomerTypeForSource(source string) string {
	if source == OrderSourcePOS {
		return CustomerTypePermanent
	}
	return CustomerTypeTemporary
}

// UpsertOutcome resultado del upsert de cliente por teléfono.
type UpsertOutcome int

const (
	UpsertCreated UpsertOutcome = iota + 1
	UpsertUpdated
	// UpsertTenantCollision el teléfono ya existe pero pertenece a otro tenant; no se modificó nada.
	UpsertTenantCollision
)
