package notification

import (
	"context"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// Result desenlace de un envío. La pasarela nunca devuelve error al llamador.
type Result int

const (
	ResultDelivered Result = iota + 1
	ResultQueued           // falló dos veces y quedó en notification_queue
	ResultSkipped          // canal no configurado
	ResultLost             // falló dos veces y tampoco se pudo encolar
)

func (r Result) String() string {
	switch r {
	case ResultDelivered:
		return "delivered"
	case ResultQueued:
		return "queued"
	case ResultSkipped:
		return "skipped"
	case ResultLost:
		return "lost"
	default:
		return "unknown"
	}
}

// DefaultRetryDelay pausa entre el primer intento y el reintento.
const DefaultRetryDelay = 700 * time.Millisecond

// queueWriteTimeout tiempo máximo para encolar aunque el contexto del llamador ya esté cancelado.
const queueWriteTimeout = 5 * time.Second

// Gateway envía mensajes con un reintento y, si ambos fallan, los deja en la cola durable.
type Gateway struct {
	sender     Sender
	queue      repository.NotificationQueueRepository
	chatID     string
	retryDelay time.Duration
	log        *logger.Logger
	metrics    Metrics
}

// GatewayConfig destino y pausa de reintento. ChatID vacío deshabilita la pasarela.
type GatewayConfig struct {
	ChatID     string
	RetryDelay time.Duration
}

// NewGateway construye la pasarela. sender nil también la deja deshabilitada.
func NewGateway(sender Sender, queue repository.NotificationQueueRepository, cfg GatewayConfig, log *logger.Logger, metrics Metrics) *Gateway {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Gateway{
		sender:     sender,
		queue:      queue,
		chatID:     cfg.ChatID,
		retryDelay: cfg.RetryDelay,
		log:        log.Component("notification_gateway"),
		metrics:    metrics,
	}
}

// Enabled indica si hay destino configurado.
func (g *Gateway) Enabled() bool { return g.sender != nil && g.chatID != "" }

// Send intenta entregar text; ver Result para los desenlaces posibles.
func (g *Gateway) Send(ctx context.Context, text string) Result {
	res := g.send(ctx, text)
	g.metrics.ObserveSend(res)
	return res
}

func (g *Gateway) send(ctx context.Context, text string) Result {
	if !g.Enabled() {
		g.log.Warn().Msg("telegram no configurado, notificación omitida")
		return ResultSkipped
	}

	payload, err := NewEnvelope(g.chatID, text).Marshal()
	if err != nil {
		g.log.Error().Err(err).Msg("serializar notificación")
		return ResultLost
	}

	if err = g.sender.Send(ctx, payload); err == nil {
		return ResultDelivered
	}
	g.log.Warn().Err(err).Msg("envío fallido, se reintenta una vez")

	var lastErr error
	select {
	case <-ctx.Done():
		lastErr = ctx.Err()
	case <-time.After(g.retryDelay):
		lastErr = g.sender.Send(ctx, payload)
		if lastErr == nil {
			return ResultDelivered
		}
	}
	g.log.Error().Err(lastErr).Msg("reintento fallido, se guarda en la cola")

	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queueWriteTimeout)
	defer cancel()
	if err := g.queue.Enqueue(qctx, payload, truncateError(lastErr.Error())); err != nil {
		g.log.Error().Err(err).Str("payload", string(payload)).Msg("no se pudo encolar la notificación, se pierde")
		return ResultLost
	}
	g.log.Info().Msg("notificación guardada en la cola para reintento")
	return ResultQueued
}
