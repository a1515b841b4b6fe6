package entity

import "time"

// NotificationQueueItem notificación que falló dos veces y espera al worker de reintentos.
type NotificationQueueItem struct {
	ID        int64
	Payload   []byte // sobre JSON listo para reenviar
	Error     string
	Tries     int
	LastTried *time.Time
	CreatedAt time.Time
}
