package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"

	appanalytics "github.com/jhoicas/storefront-api/internal/application/analytics"
	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/inventory"
	"github.com/jhoicas/storefront-api/internal/application/notification"
	"github.com/jhoicas/storefront-api/internal/application/order"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/internal/infrastructure/metrics"
	"github.com/jhoicas/storefront-api/internal/infrastructure/postgres"
	"github.com/jhoicas/storefront-api/internal/infrastructure/ratelimit"
	"github.com/jhoicas/storefront-api/internal/infrastructure/telegram"
	httpRouter "github.com/jhoicas/storefront-api/internal/interfaces/http"
	"github.com/jhoicas/storefront-api/pkg/config"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// Montos como números JSON (no strings) en todas las respuestas.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		migrator, err := postgres.NewMigrator(pool, log)
		if err != nil {
			log.Fatal().Err(err).Msg("preparar migraciones")
		}
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		_ = migrator.Close()
	}

	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	queueRepo := postgres.NewNotificationQueueRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Intentos de login: Redis si está configurado (compartido entre réplicas), si no en memoria.
	var attempts repository.LoginAttemptStore = ratelimit.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		redisClient, err := ratelimit.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		attempts = ratelimit.NewRedisStore(redisClient)
	}

	registry := metrics.NewRegistry()

	// Notificaciones: sin token o chat la pasarela queda deshabilitada y los envíos se omiten.
	var sender notification.Sender
	if cfg.Telegram.Enabled() {
		sender = telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.BotToken)
	} else {
		log.Warn().Msg("telegram no configurado, las notificaciones quedan deshabilitadas")
	}
	gateway := notification.NewGateway(sender, queueRepo, notification.GatewayConfig{ChatID: cfg.Telegram.ChatID}, log, registry)
	orderNotifier := notification.NewOrderNotifier(gateway, cfg.Store.OrderLowStockThreshold, log)

	ledger := inventory.NewLedger(txRunner, movementRepo, log)
	placeOrderUC := order.NewPlaceOrderUseCase(txRunner, ledger, orderNotifier, cfg.Store.PriceAuthority, log)
	lifecycleUC := order.NewLifecycleUseCase(txRunner, orderRepo, ledger, log)
	productUC := usecase.NewProductUseCase(productRepo, txRunner, ledger, log)
	customerUC := usecase.NewCustomerUseCase(customerRepo, orderRepo)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo, productRepo, customerRepo, orderRepo, cfg.Store.DashboardLowStock)
	authUC := auth.NewAuthUseCase(auth.AdminCredentials{
		Email:        cfg.Admin.Email,
		PasswordHash: cfg.Admin.PasswordHash,
		TenantID:     cfg.Admin.TenantID,
	}, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, attempts, log)
	if cfg.Admin.PasswordHash == "" {
		log.Warn().Msg("ADMIN_PASSWORD_HASH vacío, el login de administrador queda deshabilitado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(cfg.App.IsDevelopment(), log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(registry.FiberMiddleware())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Storefront API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		CustomerUC:  customerUC,
		PlaceOrder:  placeOrderUC,
		Lifecycle:   lifecycleUC,
		Ledger:      ledger,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
		Cookie: httpRouter.CookieConfig{
			Name:   cfg.JWT.CookieName,
			Secure: cfg.App.IsProduction(),
		},
		StorefrontTenantID: cfg.Store.StorefrontTenantID,
		ServiceName:        cfg.App.Name,
		Health:             pool,
		Metrics:            registry,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Las notificaciones en curso terminan (o quedan en la cola) antes de cerrar el pool.
	if err := orderNotifier.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("notificaciones pendientes al apagar")
	}

	log.Info().Msg("aplicación detenida")
}
