package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesMetrics agregados de pedidos de un período.
type SalesMetrics struct {
	OrderCount int
	Revenue    decimal.Decimal // Σ price × quantity de las líneas; excluye pedidos cancelados
}

// AnalyticsRepository consultas de lectura para el dashboard (read-only).
type AnalyticsRepository interface {
	// GetSalesMetrics agrega los pedidos creados desde since; since cero significa desde siempre.
	// Usa COALESCE para devolver cero si no hay pedidos en el período.
	GetSalesMetrics(ctx context.Context, tenantID string, since time.Time) (SalesMetrics, error)
}
