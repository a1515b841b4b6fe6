package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/storefront-api/internal/application/notification"
	"github.com/jhoicas/storefront-api/internal/infrastructure/metrics"
	"github.com/jhoicas/storefront-api/internal/infrastructure/postgres"
	"github.com/jhoicas/storefront-api/internal/infrastructure/telegram"
	"github.com/jhoicas/storefront-api/pkg/config"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// Worker de reintentos: reenvía a Telegram las notificaciones que quedaron en notification_queue.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name + "-notifier",
	})
	if !cfg.Telegram.Enabled() {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN y TELEGRAM_CHAT_ID son obligatorios para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	registry := metrics.NewRegistry()
	if cfg.Notifier.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.Notifier.MetricsAddr,
			Handler:           registry.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("servidor de métricas finalizado")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	worker := notification.NewRetryWorker(
		postgres.NewNotificationQueueRepository(pool),
		telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.BotToken),
		notification.WorkerConfig{
			Interval:  cfg.Notifier.Interval,
			BatchSize: cfg.Notifier.BatchSize,
			MaxTries:  cfg.Notifier.MaxTries,
		},
		log, registry,
	)
	worker.Run(ctx)

	log.Info().Msg("worker detenido")
}
