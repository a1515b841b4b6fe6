package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `id, tenant_id, name, phone, type, notes, created_at, updated_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	if err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Phone, &c.Type, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertByPhone inserta o actualiza en una sola sentencia. El WHERE del DO UPDATE impide tocar
// un cliente de otro tenant: en ese caso no vuelve ninguna fila y se informa la colisión.
// Nombre y notas vacíos no pisan los existentes; el tipo solo se fija al crear.
func (r *CustomerRepo) UpsertByPhone(ctx context.Context, c *entity.Customer) (entity.UpsertOutcome, error) {
	query := `
		INSERT INTO customers (tenant_id, name, phone, type, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (phone) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), customers.name),
			notes = COALESCE(NULLIF(EXCLUDED.notes, ''), customers.notes),
			updated_at = now()
		WHERE customers.tenant_id = EXCLUDED.tenant_id
		RETURNING ` + customerColumns + `, (xmax = 0) AS inserted`
	var inserted bool
	err := r.q.QueryRow(ctx, query, c.TenantID, c.Name, c.Phone, c.Type, c.Notes).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Phone, &c.Type, &c.Notes, &c.CreatedAt, &c.UpdatedAt, &inserted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.UpsertTenantCollision, nil
		}
		return 0, fmt.Errorf("upsert customer: %w", err)
	}
	if inserted {
		return entity.UpsertCreated, nil
	}
	return entity.UpsertUpdated, nil
}

// GetByID obtiene un cliente del tenant. Devuelve nil, nil si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, tenantID string, id int64) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// List lista clientes del tenant con búsqueda por nombre o teléfono y paginación.
func (r *CustomerRepo) List(ctx context.Context, f repository.CustomerFilter) ([]*entity.Customer, int, error) {
	limit, offset := normalizePage(f.Limit, f.Offset)
	where := ` WHERE tenant_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR phone ILIKE '%' || $2 || '%')`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, f.TenantID, f.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+customerColumns+` FROM customers`+where+` ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
		f.TenantID, f.Search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Customer, 0, limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// Update actualiza un cliente. Un teléfono ya usado por otro cliente devuelve conflicto.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers SET name = $3, phone = $4, type = $5, notes = $6, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query, c.ID, c.TenantID, c.Name, c.Phone, c.Type, c.Notes).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound("cliente no encontrado")
		}
		if isUniqueViolation(err) {
			return domain.Conflict(domain.ErrDuplicate, "ya existe un cliente con ese teléfono")
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Count total de clientes del tenant.
func (r *CustomerRepo) Count(ctx context.Context, tenantID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE tenant_id = $1`, tenantID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}
