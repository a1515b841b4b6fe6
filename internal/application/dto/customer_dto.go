package dto

import "time"

// UpdateCustomerRequest entrada para editar un cliente desde el back office.
type UpdateCustomerRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone *string `json:"phone" validate:"omitempty,min=5,max=20"`
	Type  *string `json:"type" validate:"omitempty,oneof=PERMANENT TEMPORARY"`
	Notes *string `json:"notes" validate:"omitempty,max=1000"`
}

// CustomerListQuery filtros del listado de clientes.
type CustomerListQuery struct {
	PageRequest
	Search string `query:"search" validate:"max=100"`
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Type      string    `json:"type"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CustomerDetailResponse cliente con sus pedidos más recientes.
type CustomerDetailResponse struct {
	CustomerResponse
	Orders []OrderResponse `json:"orders"`
}

// CustomerListResponse lista paginada de clientes.
type CustomerListResponse struct {
	Customers  []CustomerResponse `json:"customers"`
	Pagination Pagination         `json:"pagination"`
}
