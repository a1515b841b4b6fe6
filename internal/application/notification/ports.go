package notification

import "context"

// Sender entrega un sobre ya serializado al canal externo (Telegram).
type Sender interface {
	Send(ctx context.Context, payload []byte) error
}

// Metrics contadores de la pasarela y del worker. Las implementaciones deben ser seguras para uso concurrente.
type Metrics interface {
	ObserveSend(result Result)
	ObserveRetry(delivered bool)
}

type nopMetrics struct{}

func (nopMetrics) ObserveSend(Result) {}
func (nopMetrics) ObserveRetry(bool) {}
