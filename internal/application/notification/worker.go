package notification

import (
	"context"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// WorkerConfig parámetros del ciclo de reintentos.
type WorkerConfig struct {
	Interval  time.Duration // entre ciclos; 30s por defecto
	BatchSize int           // ítems por ciclo; 20 por defecto
	MaxTries  int           // a partir de aquí el ítem queda en la tabla sin tocar; 5 por defecto
	ItemGap   time.Duration // pausa entre ítems; 100ms por defecto
}

func (c *WorkerConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.MaxTries <= 0 {
		c.MaxTries = 5
	}
	if c.ItemGap <= 0 {
		c.ItemGap = 100 * time.Millisecond
	}
}

// RetryWorker reenvía periódicamente las notificaciones de la cola durable.
type RetryWorker struct {
	queue   repository.NotificationQueueRepository
	sender  Sender
	cfg     WorkerConfig
	log     *logger.Logger
	metrics Metrics
	now     func() time.Time
}

// NewRetryWorker construye el worker.
func NewRetryWorker(queue repository.NotificationQueueRepository, sender Sender, cfg WorkerConfig, log *logger.Logger, metrics Metrics) *RetryWorker {
	cfg.applyDefaults()
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &RetryWorker{
		queue:   queue,
		sender:  sender,
		cfg:     cfg,
		log:     log.Component("notification_worker"),
		metrics: metrics,
		now:     time.Now,
	}
}

// Run procesa la cola de inmediato y luego cada Interval hasta que ctx se cancele.
// Los errores de un ciclo se registran y no detienen el worker.
func (w *RetryWorker) Run(ctx context.Context) {
	w.log.Info().Dur("interval", w.cfg.Interval).Int("batch_size", w.cfg.BatchSize).Msg("worker de notificaciones iniciado")

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("error procesando la cola")
		}
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker de notificaciones detenido")
			return
		case <-ticker.C:
		}
	}
}

// ProcessBatch ejecuta un ciclo y devuelve cuántas notificaciones se entregaron.
// Si ctx se cancela, abandona el resto del lote entre ítems.
func (w *RetryWorker) ProcessBatch(ctx context.Context) (int, error) {
	items, err := w.queue.FetchPending(ctx, w.cfg.MaxTries, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(items) > 0 {
		w.log.Info().Int("count", len(items)).Msg("notificaciones pendientes")
	}

	delivered := 0
	for i, item := range items {
		if ctx.Err() != nil {
			return delivered, nil
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return delivered, nil
			case <-time.After(w.cfg.ItemGap):
			}
		}

		sendErr := w.sender.Send(ctx, item.Payload)
		if sendErr != nil && ctx.Err() != nil {
			// Interrumpido por el apagado: no cuenta como intento.
			return delivered, nil
		}
		w.metrics.ObserveRetry(sendErr == nil)

		if sendErr == nil {
			if err := w.queue.Delete(ctx, item.ID); err != nil {
				w.log.Error().Err(err).Int64("notification_id", item.ID).Msg("entregada pero no se pudo borrar de la cola")
				continue
			}
			delivered++
			w.log.Info().Int64("notification_id", item.ID).Msg("notificación entregada")
			continue
		}

		w.log.Warn().Err(sendErr).Int64("notification_id", item.ID).Int("tries", item.Tries+1).Msg("reintento fallido")
		if err := w.queue.MarkFailed(ctx, item.ID, truncateError(sendErr.Error()), w.now()); err != nil {
			w.log.Error().Err(err).Int64("notification_id", item.ID).Msg("no se pudo registrar el fallo")
		}
	}
	return delivered, nil
}
