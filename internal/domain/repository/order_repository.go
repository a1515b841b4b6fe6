package repository

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// OrderFilter criterios de listado de pedidos.
type OrderFilter struct {
	TenantID   string
	Status     string
	CustomerID int64
	Limit      int
	Offset     int
}

// OrderRepository define el puerto de persistencia para Order y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateItem(ctx context.Context, item *entity.OrderItem) error
	// GetByID devuelve el pedido con cliente y líneas (cada línea con su producto).
	GetByID(ctx context.Context, tenantID string, id int64) (*entity.Order, error)
	// GetForUpdate bloquea la fila del pedido y carga sus líneas sin productos.
	GetForUpdate(ctx context.Context, tenantID string, id int64) (*entity.Order, error)
	UpdateStatus(ctx context.Context, tenantID string, id int64, status string) error
	DeleteItems(ctx context.Context, orderID int64) error
	Delete(ctx context.Context, tenantID string, id int64) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int, error)
}
