package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCustomerRequest comprador de un pedido; el teléfono lo identifica.
type OrderCustomerRequest struct {
	Name    string `json:"name" validate:"max=200"`
	Phone   string `json:"phone" validate:"required,max=20"`
	Message string `json:"message" validate:"max=1000"`
}

// OrderItemRequest línea solicitada.
type OrderItemRequest struct {
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

// PlaceOrderRequest body de POST /api/orders y /api/public/orders.
type PlaceOrderRequest struct {
	Customer OrderCustomerRequest `json:"customer"`
	Items    []OrderItemRequest   `json:"items" validate:"required,min=1,dive"`
	Source   string               `json:"source" validate:"omitempty,oneof=PUBLIC POS"`
}

// UpdateOrderStatusRequest body de PUT /api/orders/:id.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
}

// OrderListQuery filtros del listado de pedidos.
type OrderListQuery struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
}

// OrderItemResponse línea de pedido con el producto actual.
type OrderItemResponse struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	Product   *ProductResponse `json:"product,omitempty"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID         int64               `json:"id"`
	CustomerID int64               `json:"customerId"`
	Source     string              `json:"source"`
	Status     string              `json:"status"`
	Total      decimal.Decimal     `json:"total"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	Customer   *CustomerResponse   `json:"customer,omitempty"`
	Items      []OrderItemResponse `json:"items"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Pagination Pagination      `json:"pagination"`
}
