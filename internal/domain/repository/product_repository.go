package repository

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// ProductFilter criterios de listado del catálogo. Search busca en título, SKU y descripción.
type ProductFilter struct {
	TenantID string
	Search   string
	Category string
	Limit    int
	Offset   int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Todas las lecturas van acotadas al tenant: un producto de otro tenant es indistinguible de uno inexistente.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, tenantID string, id int64) (*entity.Product, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE); solo tiene sentido dentro de una transacción.
	GetForUpdate(ctx context.Context, tenantID string, id int64) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	SetStock(ctx context.Context, tenantID string, id int64, stock int) error
	// DecrementStock descuenta qty solo si hay stock suficiente y devuelve el stock resultante.
	DecrementStock(ctx context.Context, tenantID string, id int64, qty int) (int, error)
	IncrementStock(ctx context.Context, tenantID string, id int64, qty int) (int, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	ListLowStock(ctx context.Context, tenantID string, threshold int) ([]*entity.Product, error)
	ListCategories(ctx context.Context, tenantID string) ([]string, error)
	Delete(ctx context.Context, tenantID string, id int64) error
}
