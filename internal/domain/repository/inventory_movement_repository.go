package repository

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// MovementFilter criterios de consulta del libro; ProductID 0 significa todos los productos.
type MovementFilter struct {
	TenantID  string
	ProductID int64
	Limit     int
	Offset    int
}

// InventoryMovementRepository define el puerto del libro de inventario. Solo inserción y lectura.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.InventoryMovement, error)
}
