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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderWithCustomerSelect = `
	SELECT o.id, o.tenant_id, o.customer_id, o.source, o.status, o.total, o.created_at, o.updated_at,
	       c.id, c.tenant_id, c.name, c.phone, c.type, c.notes, c.created_at, c.updated_at
	FROM orders o
	JOIN customers c ON c.id = o.customer_id`

// OrderRepo implementación de OrderRepository (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func scanOrderWithCustomer(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var c entity.Customer
	err := row.Scan(&o.ID, &o.TenantID, &o.CustomerID, &o.Source, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt,
		&c.ID, &c.TenantID, &c.Name, &c.Phone, &c.Type, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Customer = &c
	return &o, nil
}

// Create inserta la cabecera del pedido y rellena ID y timestamps.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO orders (tenant_id, customer_id, source, status, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		o.TenantID, o.CustomerID, o.Source, o.Status, o.Total,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateItem inserta una línea de pedido.
func (r *OrderRepo) CreateItem(ctx context.Context, it *entity.OrderItem) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		it.OrderID, it.ProductID, it.Quantity, it.Price,
	).Scan(&it.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Conflict(domain.ErrProductNotFound, fmt.Sprintf("producto %d no encontrado", it.ProductID))
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// GetByID devuelve el pedido con cliente y líneas (con producto). nil, nil si no existe en el tenant.
func (r *OrderRepo) GetByID(ctx context.Context, tenantID string, id int64) (*entity.Order, error) {
	o, err := scanOrderWithCustomer(r.q.QueryRow(ctx,
		orderWithCustomerSelect+` WHERE o.id = $1 AND o.tenant_id = $2`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := r.itemsWithProducts(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// GetForUpdate bloquea la fila del pedido y carga sus líneas (sin producto).
func (r *OrderRepo) GetForUpdate(ctx context.Context, tenantID string, id int64) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(ctx, `
		SELECT id, tenant_id, customer_id, source, status, total, created_at, updated_at
		FROM orders WHERE id = $1 AND tenant_id = $2 FOR UPDATE`, id, tenantID,
	).Scan(&o.ID, &o.TenantID, &o.CustomerID, &o.Source, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}

	rows, err := r.q.Query(ctx,
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, &it)
	}
	return &o, rows.Err()
}

// UpdateStatus cambia el estado del pedido.
func (r *OrderRepo) UpdateStatus(ctx context.Context, tenantID string, id int64, status string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = now() WHERE id = $1 AND tenant_id = $2`, id, tenantID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("pedido no encontrado")
	}
	return nil
}

// DeleteItems elimina las líneas de un pedido; debe ejecutarse antes de Delete.
func (r *OrderRepo) DeleteItems(ctx context.Context, orderID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return nil
}

// Delete elimina la cabecera del pedido.
func (r *OrderRepo) Delete(ctx context.Context, tenantID string, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("pedido no encontrado")
	}
	return nil
}

// List lista pedidos (más recientes primero) con cliente y líneas. Devuelve también el total.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	limit, offset := normalizePage(f.Limit, f.Offset)
	where := ` WHERE o.tenant_id = $1 AND ($2 = '' OR o.status = $2) AND ($3 = 0 OR o.customer_id = $3)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+where, f.TenantID, f.Status, f.CustomerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.q.Query(ctx,
		orderWithCustomerSelect+where+` ORDER BY o.created_at DESC, o.id DESC LIMIT $4 OFFSET $5`,
		f.TenantID, f.Status, f.CustomerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	list := make([]*entity.Order, 0, limit)
	ids := make([]int64, 0, limit)
	for rows.Next() {
		o, err := scanOrderWithCustomer(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	if len(ids) == 0 {
		return list, total, nil
	}

	items, err := r.itemsWithProducts(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}
	return list, total, nil
}

// itemsWithProducts carga las líneas de varios pedidos con su producto, agrupadas por pedido.
func (r *OrderRepo) itemsWithProducts(ctx context.Context, orderIDs []int64) (map[int64][]*entity.OrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.price,
		       p.id, p.tenant_id, p.title, p.description, p.category, p.price, p.stock, p.sku, p.hsn,
		       p.tax_rate, p.image_url, p.created_at, p.updated_at
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]*entity.OrderItem, len(orderIDs))
	for rows.Next() {
		var it entity.OrderItem
		var p entity.Product
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price,
			&p.ID, &p.TenantID, &p.Title, &p.Description, &p.Category, &p.Price, &p.Stock, &p.SKU, &p.HSN,
			&p.TaxRate, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		it.Product = &p
		out[it.OrderID] = append(out[it.OrderID], &it)
	}
	return out, rows.Err()
}
