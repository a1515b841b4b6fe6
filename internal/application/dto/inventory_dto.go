package dto

import "time"

// AdjustStockRequest body de POST /api/inventory/adjust. Change es con signo y distinto de cero.
type AdjustStockRequest struct {
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Change    int    `json:"change" validate:"required"`
	Reason    string `json:"reason" validate:"max=100"`
}

// MovementListQuery filtros de GET /api/inventory/movements.
type MovementListQuery struct {
	PageRequest
	ProductID int64 `query:"productId" validate:"omitempty,gt=0"`
}

// MovementResponse entrada del libro de inventario.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID int64     `json:"productId"`
	Reason    string    `json:"reason"`
	Change    int       `json:"change"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"createdAt"`
}

// MovementListResponse página del libro, más recientes primero.
type MovementListResponse struct {
	Movements []MovementResponse `json:"movements"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}
