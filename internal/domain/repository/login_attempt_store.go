package repository

import (
	"context"
	"time"
)

// LoginAttemptStore registra intentos fallidos de login por clave (IP del cliente) en una ventana deslizante.
// Se inyecta para que el límite sea compartido entre instancias.
type LoginAttemptStore interface {
	// RecordFailure anota un intento fallido y devuelve cuántos hay dentro de la ventana.
	RecordFailure(ctx context.Context, key string, window time.Duration) (int, error)
	// Count devuelve los intentos fallidos dentro de la ventana.
	Count(ctx context.Context, key string, window time.Duration) (int, error)
	Reset(ctx context.Context, key string) error
}
