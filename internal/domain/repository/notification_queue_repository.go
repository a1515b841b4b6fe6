package repository

import (
	"context"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// NotificationQueueRepository cola durable de notificaciones no entregadas.
type NotificationQueueRepository interface {
	Enqueue(ctx context.Context, payload []byte, errMsg string) error
	// FetchPending devuelve hasta limit ítems con menos de maxTries intentos, los más antiguos primero.
	FetchPending(ctx context.Context, maxTries, limit int) ([]*entity.NotificationQueueItem, error)
	Delete(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string, at time.Time) error
}
