package dto

import "time"

// LoginRequest entrada para login del administrador. Email solo se exige si está configurado.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida del login; el token viaja solo en la cookie httpOnly.
type LoginResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}
