package repository

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// CustomerFilter criterios de listado; Search busca en nombre y teléfono.
type CustomerFilter struct {
	TenantID string
	Search   string
	Limit    int
	Offset   int
}

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	// UpsertByPhone crea o actualiza el cliente identificado por teléfono y rellena customer con la fila final.
	// Si el teléfono pertenece a otro tenant devuelve UpsertTenantCollision sin modificar nada.
	UpsertByPhone(ctx context.Context, customer *entity.Customer) (entity.UpsertOutcome, error)
	GetByID(ctx context.Context, tenantID string, id int64) (*entity.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]*entity.Customer, int, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Count(ctx context.Context, tenantID string) (int, error)
}
