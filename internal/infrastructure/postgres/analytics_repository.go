package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetSalesMetrics cuenta pedidos y suma ingresos desde since (cero = sin límite inferior).
// Ingresos = Σ price × quantity de las líneas; los pedidos cancelados cuentan como pedido pero no como ingreso.
func (r *AnalyticsRepo) GetSalesMetrics(ctx context.Context, tenantID string, since time.Time) (repository.SalesMetrics, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM orders o
	      WHERE o.tenant_id = $1 AND ($2::timestamptz IS NULL OR o.created_at >= $2))          AS order_count,
	    COALESCE((
	      SELECT SUM(i.price * i.quantity)
	        FROM order_items i
	        JOIN orders o ON o.id = i.order_id
	       WHERE o.tenant_id = $1
	         AND o.status <> $3
	         AND ($2::timestamptz IS NULL OR o.created_at >= $2)), 0)                          AS revenue`

	var sinceArg *time.Time
	if !since.IsZero() {
		sinceArg = &since
	}
	var m repository.SalesMetrics
	if err := r.q.QueryRow(ctx, query, tenantID, sinceArg, entity.OrderStatusCancelled).Scan(&m.OrderCount, &m.Revenue); err != nil {
		return repository.SalesMetrics{}, fmt.Errorf("analytics.GetSalesMetrics: %w", err)
	}
	return m, nil
}
