package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo libro de inventario sobre PostgreSQL. No expone UPDATE ni DELETE.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create agrega un movimiento; asigna un UUID si no trae ID.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO inventory_movements (id, tenant_id, product_id, reason, change, reference)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		m.ID, m.TenantID, m.ProductID, m.Reason, m.Change, m.Reference,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inventory movement: %w", err)
	}
	return nil
}

// List devuelve movimientos del tenant, más recientes primero; ProductID 0 no filtra por producto.
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	limit, offset := normalizePage(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `
		SELECT id::text, tenant_id, product_id, reason, change, reference, created_at
		FROM inventory_movements
		WHERE tenant_id = $1 AND ($2 = 0 OR product_id = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`, f.TenantID, f.ProductID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryMovement, 0, limit)
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ProductID, &m.Reason, &m.Change, &m.Reference, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
