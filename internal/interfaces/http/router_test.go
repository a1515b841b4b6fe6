package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appanalytics "github.com/jhoicas/storefront-api/internal/application/analytics"
	"github.com/jhoicas/storefront-api/internal/application/apptest"
	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/inventory"
	"github.com/jhoicas/storefront-api/internal/application/order"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/internal/infrastructure/ratelimit"
	apphttp "github.com/jhoicas/storefront-api/internal/interfaces/http"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

const (
	adminPassword = "clave-admin"
	storeTenant   = "tienda"
)

type mockAnalyticsRepo struct {
	mock.Mock
}

func (m *mockAnalyticsRepo) GetSalesMetrics(ctx context.Context, tenantID string, since time.Time) (repository.SalesMetrics, error) {
	args := m.Called(ctx, tenantID, since)
	return args.Get(0).(repository.SalesMetrics), args.Error(1)
}

type failingPing struct{}

func (failingPing) Ping(context.Context) error { return errors.New("sin conexión") }

type testEnv struct {
	app   *fiber.App
	store *apptest.Store
}

func newTestEnv(t *testing.T, exposeDetail bool, health apphttp.HealthChecker) *testEnv {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return newTestEnvWithHash(t, exposeDetail, health, string(hash))
}

func newTestEnvWithHash(t *testing.T, exposeDetail bool, health apphttp.HealthChecker, passwordHash string) *testEnv {
	t.Helper()
	store := apptest.NewStore()
	repos := store.Repos()
	log := logger.Nop()
	ledger := inventory.NewLedger(store, repos.Movements, log)

	authUC := auth.NewAuthUseCase(
		auth.AdminCredentials{PasswordHash: passwordHash, TenantID: testTenantID},
		auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 480, Issuer: testIssuer},
		ratelimit.NewMemoryStore(), log,
	)
	analyticsRepo := new(mockAnalyticsRepo)
	analyticsRepo.On("GetSalesMetrics", mock.Anything, testTenantID, mock.Anything).
		Return(repository.SalesMetrics{OrderCount: 2, Revenue: decimal.NewFromInt(150)}, nil)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(exposeDetail, log)})
	app.Use(requestid.New())
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:             authUC,
		ProductUC:          usecase.NewProductUseCase(repos.Products, store, ledger, log),
		CustomerUC:         usecase.NewCustomerUseCase(repos.Customers, repos.Orders),
		PlaceOrder:         order.NewPlaceOrderUseCase(store, ledger, nil, order.PriceFromClient, log),
		Lifecycle:          order.NewLifecycleUseCase(store, repos.Orders, ledger, log),
		Ledger:             ledger,
		DashboardUC:        appanalytics.NewDashboardUseCase(analyticsRepo, repos.Products, repos.Customers, repos.Orders, 10),
		JWTSecret:          testJWTSecret,
		Cookie:             apphttp.CookieConfig{Name: testCookieName},
		StorefrontTenantID: storeTenant,
		ServiceName:        "storefront-test",
		Health:             health,
	})
	return &testEnv{app: app, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/login", `{"password":"`+adminPassword+`"}`, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	t.Fatal("login sin cookie de sesión")
	return nil
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CookieHttpOnlyStrict(t *testing.T) {
	env := newTestEnv(t, false, nil)
	resp := env.do(t, http.MethodPost, "/api/auth/login", `{"password":"`+adminPassword+`"}`, nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	setCookie := resp.Header.Get("Set-Cookie")
	assert.Contains(t, setCookie, testCookieName+"=")
	assert.Contains(t, strings.ToLower(setCookie), "httponly")
	assert.Contains(t, strings.ToLower(setCookie), "samesite=strict")
}

func TestLogin_LimiteDeIntentos(t *testing.T) {
	env := newTestEnv(t, false, nil)
	for i := 0; i < auth.MaxFailedAttempts; i++ {
		resp := env.do(t, http.MethodPost, "/api/auth/login", `{"password":"mala"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}

	resp := env.do(t, http.MethodPost, "/api/auth/login", `{"password":"`+adminPassword+`"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", decodeError(t, resp).Code)
}

func TestLogin_SinHashConfiguradoEs500(t *testing.T) {
	env := newTestEnvWithHash(t, false, nil, "")
	for i := 0; i < auth.MaxFailedAttempts+1; i++ {
		resp := env.do(t, http.MethodPost, "/api/auth/login", `{"password":"`+adminPassword+`"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, "intento %d", i+1)
		assert.Equal(t, "INTERNAL", decodeError(t, resp).Code)
	}
}

func TestLogin_SinPasswordEs400ConDetalle(t *testing.T) {
	env := newTestEnv(t, false, nil)
	resp := env.do(t, http.MethodPost, "/api/auth/login", `{}`, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, resp)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "password", body.Details[0].Field)
}

func TestRutasAdmin_RequierenSesion(t *testing.T) {
	env := newTestEnv(t, false, nil)
	resp := env.do(t, http.MethodGet, "/api/products", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cookie := env.login(t)
	resp = env.do(t, http.MethodGet, "/api/products", "", cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos e inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestProductos_CrearAjustarYBorrar(t *testing.T) {
	env := newTestEnv(t, false, nil)
	cookie := env.login(t)

	resp := env.do(t, http.MethodPost, "/api/products", `{"title":"Té 1kg","price":"350.00","stock":4,"category":"Bebidas"}`, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	resp.Body.Close()
	assert.Equal(t, 4, p.Stock)

	resp = env.do(t, http.MethodPost, "/api/inventory/adjust", `{"productId":`+itoa(p.ID)+`,"change":-5}`, cookie)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NEGATIVE_STOCK", decodeError(t, resp).Code)

	resp = env.do(t, http.MethodPost, "/api/inventory/adjust", `{"productId":`+itoa(p.ID)+`,"change":6,"reason":"recuento"}`, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 10, env.store.Stock(p.ID))

	resp = env.do(t, http.MethodGet, "/api/inventory/movements?productId="+itoa(p.ID), "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs dto.MovementListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&movs))
	resp.Body.Close()
	require.Len(t, movs.Movements, 2)
	assert.Equal(t, "adjust:recuento", movs.Movements[0].Reference)

	resp = env.do(t, http.MethodDelete, "/api/products/"+itoa(p.ID), "", cookie)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PRODUCT_IN_USE", decodeError(t, resp).Code)
	assert.Len(t, env.store.Movements(), 2, "el libro no se borra con el producto")

	resp = env.do(t, http.MethodPost, "/api/products", `{"title":"Borrador","price":"1"}`, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var draft dto.ProductResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&draft))
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/products/"+itoa(draft.ID), "", cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestProductos_IDInvalidoYOtroTenant(t *testing.T) {
	env := newTestEnv(t, false, nil)
	cookie := env.login(t)
	ajeno := env.store.SeedProduct(entity.Product{TenantID: "otro", Title: "Ajeno", Price: decimal.NewFromInt(1)})

	resp := env.do(t, http.MethodGet, "/api/products/abc", "", cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/products/"+itoa(ajeno.ID), "", cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tienda pública y pedidos
// ──────────────────────────────────────────────────────────────────────────────

func TestPedidoPublico_FuerzaOrigenYDescuentaStock(t *testing.T) {
	env := newTestEnv(t, false, nil)
	p := env.store.SeedProduct(entity.Product{TenantID: storeTenant, Title: "Dal", Price: decimal.NewFromInt(90), Stock: 5})

	body := `{"customer":{"name":"Meera","phone":"9000"},"items":[{"productId":` + itoa(p.ID) + `,"quantity":2,"price":"90"}],"source":"POS"}`
	resp := env.do(t, http.MethodPost, "/api/public/orders", body, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var o dto.OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
	resp.Body.Close()

	assert.Equal(t, entity.OrderSourcePublic, o.Source)
	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.True(t, decimal.NewFromInt(180).Equal(o.Total))
	require.NotNil(t, o.Customer)
	assert.Equal(t, entity.CustomerTypeTemporary, o.Customer.Type)
	assert.Equal(t, 3, env.store.Stock(p.ID))
}

func TestPedidoPublico_ErroresDeNegocio(t *testing.T) {
	env := newTestEnv(t, false, nil)
	p := env.store.SeedProduct(entity.Product{TenantID: storeTenant, Title: "Dal", Price: decimal.NewFromInt(90), Stock: 1})

	resp := env.do(t, http.MethodPost, "/api/public/orders",
		`{"customer":{"phone":"1"},"items":[{"productId":`+itoa(p.ID)+`,"quantity":2,"price":"90"}]}`, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, resp).Code)

	resp = env.do(t, http.MethodPost, "/api/public/orders",
		`{"customer":{"phone":"1"},"items":[{"productId":`+itoa(p.ID)+`,"quantity":0,"price":"90"}]}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, resp)
	require.NotEmpty(t, body.Details)
	assert.Equal(t, "items[0].quantity", body.Details[0].Field)

	resp = env.do(t, http.MethodPost, "/api/public/orders",
		`{"customer":{"phone":"1"},"items":[{"productId":999,"quantity":1,"price":"90"}]}`, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeError(t, resp).Code)

	assert.Equal(t, 1, env.store.Stock(p.ID))
	assert.Zero(t, env.store.OrderCount())
}

func TestPedidos_CicloDeVida(t *testing.T) {
	env := newTestEnv(t, false, nil)
	cookie := env.login(t)
	p := env.store.SeedProduct(entity.Product{TenantID: testTenantID, Title: "Ghee", Price: decimal.NewFromInt(500), Stock: 3})

	resp := env.do(t, http.MethodPost, "/api/orders",
		`{"customer":{"name":"Mostrador","phone":"77"},"items":[{"productId":`+itoa(p.ID)+`,"quantity":3,"price":"480"}],"source":"POS"}`, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var o dto.OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
	resp.Body.Close()
	assert.Equal(t, entity.CustomerTypePermanent, o.Customer.Type)

	path := "/api/orders/" + itoa(o.ID)
	resp = env.do(t, http.MethodPut, path, `{"status":"CONFIRMED"}`, cookie)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, path, "", cookie)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ORDER_ACTIVE", decodeError(t, resp).Code)

	resp = env.do(t, http.MethodPut, path, `{"status":"PENDING"}`, cookie)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decodeError(t, resp).Code)

	resp = env.do(t, http.MethodPut, path, `{"status":"CANCELLED"}`, cookie)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, env.store.Stock(p.ID))

	resp = env.do(t, http.MethodDelete, path, "", cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, path, "", cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dashboard, health y errores internos
// ──────────────────────────────────────────────────────────────────────────────

func TestDashboard_Stats(t *testing.T) {
	env := newTestEnv(t, false, nil)
	cookie := env.login(t)
	env.store.SeedProduct(entity.Product{TenantID: testTenantID, Title: "Poco", Price: decimal.NewFromInt(1), Stock: 1})

	resp := env.do(t, http.MethodGet, "/api/dashboard/stats", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats dto.DashboardStatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()

	assert.Equal(t, 2, stats.TotalOrders)
	assert.True(t, decimal.NewFromInt(150).Equal(stats.TotalRevenue))
	assert.Len(t, stats.LowStockProducts, 1)
	assert.Equal(t, 10, stats.LowStockThreshold)
}

func TestHealth(t *testing.T) {
	resp := newTestEnv(t, false, nil).do(t, http.MethodGet, "/health", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = newTestEnv(t, false, failingPing{}).do(t, http.MethodGet, "/health", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestErrorInterno_DetalleSoloEnDevelopment(t *testing.T) {
	for _, expose := range []bool{true, false} {
		env := newTestEnv(t, expose, nil)
		cookie := env.login(t)
		env.store.FailMovementCreate = errors.New("disco lleno")

		resp := env.do(t, http.MethodPost, "/api/products", `{"title":"X","price":"1","stock":1}`, cookie)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL", body.Code)
		if expose {
			assert.Contains(t, body.Detail, "disco lleno")
		} else {
			assert.Empty(t, body.Detail)
		}
	}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
