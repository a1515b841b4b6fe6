package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.NotificationQueueRepository = (*NotificationQueueRepo)(nil)

// NotificationQueueRepo cola durable de notificaciones sobre la tabla notification_queue.
type NotificationQueueRepo struct {
	q Querier
}

// NewNotificationQueueRepository construye el adaptador.
func NewNotificationQueueRepository(q Querier) *NotificationQueueRepo {
	return &NotificationQueueRepo{q: q}
}

// Enqueue guarda el sobre JSON con el error del último intento y tries = 0.
func (r *NotificationQueueRepo) Enqueue(ctx context.Context, payload []byte, errMsg string) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO notification_queue (payload, error, tries, last_tried) VALUES ($1::jsonb, $2, 0, now())`, string(payload), errMsg)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// FetchPending ítems con tries < maxTries, los más antiguos primero.
func (r *NotificationQueueRepo) FetchPending(ctx context.Context, maxTries, limit int) ([]*entity.NotificationQueueItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, payload::text, error, tries, last_tried, created_at
		FROM notification_queue
		WHERE tries < $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`, maxTries, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch notifications: %w", err)
	}
	defer rows.Close()
	var list []*entity.NotificationQueueItem
	for rows.Next() {
		var it entity.NotificationQueueItem
		var payload string
		if err := rows.Scan(&it.ID, &payload, &it.Error, &it.Tries, &it.LastTried, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		it.Payload = []byte(payload)
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Delete quita un ítem entregado.
func (r *NotificationQueueRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM notification_queue WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// MarkFailed incrementa tries y registra el error y el momento del intento.
func (r *NotificationQueueRepo) MarkFailed(ctx context.Context, id int64, errMsg string, at time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE notification_queue SET tries = tries + 1, error = $2, last_tried = $3 WHERE id = $1`, id, errMsg, at)
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return nil
}
