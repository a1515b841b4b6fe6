package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/inventory"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

// InventoryHandler ajustes manuales y consulta del libro de inventario.
type InventoryHandler struct {
	ledger *inventory.Ledger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// Adjust godoc
// @Summary      Ajustar stock
// @Description  change con signo; el stock nunca queda negativo
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "productId, change, reason"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "stock negativo"
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	p, err := h.ledger.AdjustStock(c.Context(), inventory.AdjustInput{
		TenantID:  GetTenantID(c),
		ProductID: in.ProductID,
		Change:    in.Change,
		Note:      in.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductResponse(p))
}

// Movements godoc
// @Summary      Libro de inventario
// @Tags         inventory
// @Produce      json
// @Param        productId  query  int  false  "Filtrar por producto"
// @Param        page       query  int  false  "Página"
// @Param        limit      query  int  false  "Tamaño de página"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	q.DefaultPage()
	list, err := h.ledger.ListMovements(c.Context(), repository.MovementFilter{
		TenantID:  GetTenantID(c),
		ProductID: q.ProductID,
		Limit:     q.Limit,
		Offset:    q.Offset(),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.MovementListResponse{Movements: dto.NewMovementList(list), Page: q.Page, Limit: q.Limit})
}
