package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/order"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// PublicHandler tienda pública: catálogo y pedidos sin sesión, siempre sobre el tenant de la tienda.
type PublicHandler struct {
	tenantID string
	products *usecase.ProductUseCase
	place    *order.PlaceOrderUseCase
}

// NewPublicHandler construye el handler para el tenant de la tienda.
func NewPublicHandler(tenantID string, products *usecase.ProductUseCase, place *order.PlaceOrderUseCase) *PublicHandler {
	return &PublicHandler{tenantID: tenantID, products: products, place: place}
}

// ListProducts godoc
// @Summary      Catálogo público
// @Tags         public
// @Produce      json
// @Param        search    query  string  false  "Búsqueda"
// @Param        category  query  string  false  "Categoría"
// @Param        page      query  int     false  "Página"
// @Param        limit     query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/public/products [get]
func (h *PublicHandler) ListProducts(c *fiber.Ctx) error {
	var q dto.ProductListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	out, err := h.products.List(c.Context(), h.tenantID, q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetProduct godoc
// @Summary      Producto del catálogo público
// @Tags         public
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/public/products/{id} [get]
func (h *PublicHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	out, err := h.products.GetByID(c.Context(), h.tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Categories categorías del catálogo público.
// GET /api/public/categories
func (h *PublicHandler) Categories(c *fiber.Ctx) error {
	out, err := h.products.Categories(c.Context(), h.tenantID)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// PlaceOrder godoc
// @Summary      Colocar pedido desde la tienda
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PlaceOrderRequest  true  "Cliente y líneas (source se ignora)"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/public/orders [post]
func (h *PublicHandler) PlaceOrder(c *fiber.Ctx) error {
	var in dto.PlaceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return domain.Validation("cuerpo inválido", domain.FieldError{Field: "body", Message: err.Error()})
	}
	in.Source = entity.OrderSourcePublic
	if err := validateStruct(&in); err != nil {
		return err
	}
	o, err := h.place.Execute(c.Context(), toPlaceOrderInput(h.tenantID, in))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(o))
}
