package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/storefront-api/internal/application/analytics"
)

// DashboardHandler maneja el endpoint del dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetStats devuelve totales, métricas del mes, productos con stock bajo y pedidos recientes.
// GET /api/dashboard/stats
//
// No requiere parámetros; el inicio de mes se calcula en el servidor.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.uc.GetStats(c.Context(), GetTenantID(c))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
