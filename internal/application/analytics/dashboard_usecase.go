// Package analytics contiene el caso de uso del dashboard del back office.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

const dashboardRecentOrders = 5 // pedidos en el widget de actividad reciente

// DashboardUseCase arma las estadísticas del dashboard.
//
// Fuente de datos: AnalyticsRepository para montos y los repositorios de catálogo, clientes y pedidos
// para los listados. Todas las consultas son de solo lectura.
type DashboardUseCase struct {
	analyticsRepo     repository.AnalyticsRepository
	products          repository.ProductRepository
	customers         repository.CustomerRepository
	orders            repository.OrderRepository
	lowStockThreshold int
	now               func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	analyticsRepo repository.AnalyticsRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	lowStockThreshold int,
) *DashboardUseCase {
	return &DashboardUseCase{
		analyticsRepo:     analyticsRepo,
		products:          products,
		customers:         customers,
		orders:            orders,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// GetStats construye el DashboardStatsResponse del tenant.
//
// Cinco consultas en paralelo:
//  1. GetSalesMetrics(siempre) → TotalOrders + TotalRevenue
//  2. GetSalesMetrics(mes)     → MonthlyOrders + MonthlyRevenue
//  3. Count de clientes
//  4. ListLowStock(umbral)     → LowStockProducts
//  5. List de pedidos (5)      → RecentOrders
func (uc *DashboardUseCase) GetStats(ctx context.Context, tenantID string) (*dto.DashboardStatsResponse, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		total, month repository.SalesMetrics
		customers    int
		lowStock     []*entity.Product
		recent       []*entity.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if total, err = uc.analyticsRepo.GetSalesMetrics(gctx, tenantID, time.Time{}); err != nil {
			return fmt.Errorf("dashboard: métricas totales: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if month, err = uc.analyticsRepo.GetSalesMetrics(gctx, tenantID, monthStart); err != nil {
			return fmt.Errorf("dashboard: métricas del mes: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if customers, err = uc.customers.Count(gctx, tenantID); err != nil {
			return fmt.Errorf("dashboard: clientes: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if lowStock, err = uc.products.ListLowStock(gctx, tenantID, uc.lowStockThreshold); err != nil {
			return fmt.Errorf("dashboard: stock bajo: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if recent, _, err = uc.orders.List(gctx, repository.OrderFilter{TenantID: tenantID, Limit: dashboardRecentOrders}); err != nil {
			return fmt.Errorf("dashboard: pedidos recientes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.DashboardStatsResponse{
		TotalOrders:       total.OrderCount,
		MonthlyOrders:     month.OrderCount,
		TotalCustomers:    customers,
		TotalRevenue:      total.Revenue.Round(2),
		MonthlyRevenue:    month.Revenue.Round(2),
		LowStockThreshold: uc.lowStockThreshold,
		LowStockProducts:  dto.NewProductList(lowStock),
		RecentOrders:      dto.NewOrderList(recent),
	}, nil
}
