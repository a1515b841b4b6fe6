package dto

import "github.com/shopspring/decimal"

// DashboardStatsResponse respuesta de GET /api/dashboard/stats.
// Los montos mensuales cuentan desde el día 1 del mes en curso.
type DashboardStatsResponse struct {
	TotalOrders    int             `json:"totalOrders"`
	MonthlyOrders  int             `json:"monthlyOrders"`
	TotalCustomers int             `json:"totalCustomers"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`   // excluye pedidos cancelados
	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"` // excluye pedidos cancelados

	LowStockThreshold int               `json:"lowStockThreshold"`
	LowStockProducts  []ProductResponse `json:"lowStockProducts"` // stock ascendente
	RecentOrders      []OrderResponse   `json:"recentOrders"`
}
