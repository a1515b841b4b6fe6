package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appanalytics "github.com/jhoicas/storefront-api/internal/application/analytics"
	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/inventory"
	"github.com/jhoicas/storefront-api/internal/application/order"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	"github.com/jhoicas/storefront-api/internal/infrastructure/metrics"
)

// HealthChecker verificación de dependencias para /health (lo implementa *pgxpool.Pool).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	CustomerUC  *usecase.CustomerUseCase
	PlaceOrder  *order.PlaceOrderUseCase
	Lifecycle   *order.LifecycleUseCase
	Ledger      *inventory.Ledger
	DashboardUC *appanalytics.DashboardUseCase

	JWTSecret          string
	Cookie             CookieConfig
	StorefrontTenantID string
	ServiceName        string

	Health  HealthChecker     // opcional
	Metrics *metrics.Registry // opcional; expone /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookie)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)

	// Tienda pública (tenant fijo de la tienda)
	public := api.Group("/public")
	publicHandler := NewPublicHandler(deps.StorefrontTenantID, deps.ProductUC, deps.PlaceOrder)
	public.Get("/products", publicHandler.ListProducts)
	public.Get("/products/:id", publicHandler.GetProduct)
	public.Get("/categories", publicHandler.Categories)
	public.Post("/orders", publicHandler.PlaceOrder)

	// Rutas protegidas (requieren sesión de administrador)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.Cookie.Name), RequireRole(auth.AdminRole))

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/categories", productHandler.Categories)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)

	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.PlaceOrder, deps.Lifecycle)
	orders.Get("/", orderHandler.List)
	orders.Post("/", orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.UpdateStatus)
	orders.Delete("/:id", orderHandler.Delete)

	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	invGroup.Post("/adjust", inventoryHandler.Adjust)
	invGroup.Get("/movements", inventoryHandler.Movements)

	dashboard := protected.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/stats", dashboardHandler.GetStats)
}

func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Health != nil {
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Health.Ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.ServiceName, "database": "down"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	}
}
