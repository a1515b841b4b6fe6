package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/order"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

// OrderHandler pedidos del back office (protegido).
type OrderHandler struct {
	place     *order.PlaceOrderUseCase
	lifecycle *order.LifecycleUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(place *order.PlaceOrderUseCase, lifecycle *order.LifecycleUseCase) *OrderHandler {
	return &OrderHandler{place: place, lifecycle: lifecycle}
}

func toPlaceOrderInput(tenantID string, in dto.PlaceOrderRequest) order.PlaceOrderInput {
	items := make([]order.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, order.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return order.PlaceOrderInput{
		TenantID: tenantID,
		Customer: order.CustomerInput{Name: in.Customer.Name, Phone: in.Customer.Phone, Message: in.Customer.Message},
		Items:    items,
		Source:   in.Source,
	}
}

// Create godoc
// @Summary      Crear pedido (punto de venta o manual)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PlaceOrderRequest  true  "Cliente y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "stock insuficiente, producto inexistente o teléfono de otra cuenta"
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.PlaceOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	o, err := h.place.Execute(c.Context(), toPlaceOrderInput(GetTenantID(c), in))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(o))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Produce      json
// @Param        status  query  string  false  "PENDING | CONFIRMED | COMPLETED | CANCELLED"
// @Param        page    query  int     false  "Página"
// @Param        limit   query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var q dto.OrderListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	q.DefaultPage()
	list, total, err := h.lifecycle.List(c.Context(), repository.OrderFilter{
		TenantID: GetTenantID(c),
		Status:   q.Status,
		Limit:    q.Limit,
		Offset:   q.Offset(),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OrderListResponse{Orders: dto.NewOrderList(list), Pagination: dto.NewPagination(q.PageRequest, total)})
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Produce      json
// @Param        id   path  int  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	o, err := h.lifecycle.Get(c.Context(), GetTenantID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(o))
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path  int                           true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse  "transición no permitida"
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in dto.UpdateOrderStatusRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	o, err := h.lifecycle.UpdateStatus(c.Context(), GetTenantID(c), id, in.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(o))
}

// Delete godoc
// @Summary      Eliminar pedido (solo PENDING o CANCELLED)
// @Tags         orders
// @Param        id   path  int  true  "ID del pedido"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse  "pedido activo"
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.lifecycle.Delete(c.Context(), GetTenantID(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
