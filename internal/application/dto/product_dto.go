package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Stock es el stock inicial.
type CreateProductRequest struct {
	Title       string          `json:"title" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Category    string          `json:"category" validate:"max=100"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	SKU         *string         `json:"sku" validate:"omitempty,min=1,max=100"`
	HSN         string          `json:"hsn" validate:"max=20"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url"`
}

// UpdateProductRequest entrada para actualizar un producto. El stock solo cambia vía ajuste de inventario.
type UpdateProductRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price"`
	SKU         *string          `json:"sku" validate:"omitempty,max=100"`
	HSN         *string          `json:"hsn" validate:"omitempty,max=20"`
	TaxRate     *decimal.Decimal `json:"taxRate"`
	ImageURL    *string          `json:"imageUrl" validate:"omitempty,url"`
}

// ProductListQuery filtros del listado de productos.
type ProductListQuery struct {
	PageRequest
	Search   string `query:"search" validate:"max=100"`
	Category string `query:"category" validate:"max=100"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	SKU         *string         `json:"sku"`
	HSN         string          `json:"hsn"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

// CategoryListResponse categorías distintas del catálogo.
type CategoryListResponse struct {
	Categories []string `json:"categories"`
}
