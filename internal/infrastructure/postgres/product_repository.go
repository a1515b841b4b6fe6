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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, tenant_id, title, description, category, price, stock, sku, hsn, tax_rate, image_url, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.TenantID, &p.Title, &p.Description, &p.Category, &p.Price, &p.Stock,
		&p.SKU, &p.HSN, &p.TaxRate, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un producto y rellena ID y timestamps.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (tenant_id, title, description, category, price, stock, sku, hsn, tax_rate, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		p.TenantID, p.Title, p.Description, p.Category, p.Price, p.Stock, p.SKU, p.HSN, p.TaxRate, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapProductWriteError("insert product", err)
	}
	return nil
}

func mapProductWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.Conflict(domain.ErrDuplicate, "ya existe un producto con ese SKU")
	case isCheckViolation(err):
		return domain.Validation("el producto no cumple las restricciones de precio, stock o impuesto")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// GetByID obtiene un producto del tenant. Devuelve nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, tenantID string, id int64) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND tenant_id = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, tenantID string, id int64) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND tenant_id = $2 FOR UPDATE`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock product: %w", err)
	}
	return p, nil
}

// Update actualiza los datos editables. No toca Stock (se maneja vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET title = $3, description = $4, category = $5, price = $6, sku = $7, hsn = $8,
			tax_rate = $9, image_url = $10, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING stock, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		p.ID, p.TenantID, p.Title, p.Description, p.Category, p.Price, p.SKU, p.HSN, p.TaxRate, p.ImageURL,
	).Scan(&p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound("producto no encontrado")
		}
		return mapProductWriteError("update product", err)
	}
	return nil
}

// SetStock fija el stock de un producto ya bloqueado.
func (r *ProductRepo) SetStock(ctx context.Context, tenantID string, id int64, stock int) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $3, updated_at = now() WHERE id = $1 AND tenant_id = $2`,
		id, tenantID, stock,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrNegativeStock
		}
		return fmt.Errorf("set stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto no encontrado")
	}
	return nil
}

// DecrementStock descuenta de forma condicional: si no queda stock suficiente no se modifica nada.
func (r *ProductRepo) DecrementStock(ctx context.Context, tenantID string, id int64, qty int) (int, error) {
	var stock int
	err := r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock - $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND stock >= $3
		RETURNING stock`, id, tenantID, qty,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrInsufficientStock
		}
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	return stock, nil
}

// IncrementStock suma qty al stock y devuelve el valor resultante.
func (r *ProductRepo) IncrementStock(ctx context.Context, tenantID string, id int64, qty int) (int, error) {
	var stock int
	err := r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock + $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING stock`, id, tenantID, qty,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NotFound("producto no encontrado")
		}
		return 0, fmt.Errorf("increment stock: %w", err)
	}
	return stock, nil
}

// List lista productos del tenant con búsqueda, filtro por categoría y paginación. Devuelve también el total.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	limit, offset := normalizePage(f.Limit, f.Offset)
	where := `
		WHERE tenant_id = $1
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR category = $3)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, f.TenantID, f.Search, f.Category).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products`+where+` ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5`,
		f.TenantID, f.Search, f.Category, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// ListLowStock productos con stock <= threshold, de menor a mayor stock.
func (r *ProductRepo) ListLowStock(ctx context.Context, tenantID string, threshold int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND stock <= $2 ORDER BY stock ASC, id ASC`,
		tenantID, threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListCategories categorías distintas no vacías del tenant, ordenadas.
func (r *ProductRepo) ListCategories(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT DISTINCT category FROM products WHERE tenant_id = $1 AND category <> '' ORDER BY category`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete elimina un producto. Si alguna línea de pedido o movimiento de inventario lo referencia
// devuelve ErrProductInUse: el libro de movimientos nunca se borra.
func (r *ProductRepo) Delete(ctx context.Context, tenantID string, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		if isForeignKeyViolation(err) {
			if _, constraint := pgErrorCode(err); constraint == "inventory_movements_product_id_fkey" {
				return domain.Conflict(domain.ErrProductInUse, "el producto tiene movimientos de inventario y no puede eliminarse")
			}
			return domain.Conflict(domain.ErrProductInUse, "el producto tiene pedidos asociados y no puede eliminarse")
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("producto no encontrado")
	}
	return nil
}
