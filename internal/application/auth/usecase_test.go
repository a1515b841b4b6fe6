package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/infrastructure/ratelimit"
	"github.com/jhoicas/storefront-api/pkg/jwt"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

func newAuth(t *testing.T, email string) (*AuthUseCase, *ratelimit.MemoryStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3creta"), bcrypt.MinCost)
	require.NoError(t, err)
	store := ratelimit.NewMemoryStore()
	uc := NewAuthUseCase(
		AdminCredentials{Email: email, PasswordHash: string(hash), TenantID: "t1"},
		JWTConfig{Secret: "test_secret", ExpMinutes: 480, Issuer: "test"},
		store, logger.Nop(),
	)
	return uc, store
}

func TestLogin_Exitoso(t *testing.T) {
	uc, _ := newAuth(t, "")

	res, err := uc.Login(context.Background(), "10.0.0.1", dto.LoginRequest{Password: "s3creta"})

	require.NoError(t, err)
	subject, tenant, role, err := jwt.Parse("test_secret", res.Token)
	require.NoError(t, err)
	assert.Equal(t, AdminSubject, subject)
	assert.Equal(t, "t1", tenant)
	assert.Equal(t, AdminRole, role)
	assert.False(t, res.ExpiresAt.IsZero())
}

func TestLogin_EmailConfiguradoSeVerifica(t *testing.T) {
	uc, _ := newAuth(t, "admin@tienda.in")
	ctx := context.Background()

	_, err := uc.Login(ctx, "ip", dto.LoginRequest{Email: "otro@tienda.in", Password: "s3creta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, "ip", dto.LoginRequest{Email: " Admin@Tienda.in ", Password: "s3creta"})
	assert.NoError(t, err)
}

func TestLogin_BloqueoTrasCincoFallos(t *testing.T) {
	uc, _ := newAuth(t, "")
	ctx := context.Background()

	for i := 0; i < MaxFailedAttempts; i++ {
		_, err := uc.Login(ctx, "1.1.1.1", dto.LoginRequest{Password: "mala"})
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	}

	_, err := uc.Login(ctx, "1.1.1.1", dto.LoginRequest{Password: "s3creta"})
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts, "bloqueado aun con la contraseña correcta")
	assert.Equal(t, domain.KindRateLimited, domain.KindOf(err))

	_, err = uc.Login(ctx, "2.2.2.2", dto.LoginRequest{Password: "s3creta"})
	assert.NoError(t, err, "otro cliente no se ve afectado")
}

func TestLogin_ExitoLimpiaIntentos(t *testing.T) {
	uc, store := newAuth(t, "")
	ctx := context.Background()

	for i := 0; i < MaxFailedAttempts-1; i++ {
		_, _ = uc.Login(ctx, "ip", dto.LoginRequest{Password: "mala"})
	}
	_, err := uc.Login(ctx, "ip", dto.LoginRequest{Password: "s3creta"})
	require.NoError(t, err)

	n, err := store.Count(ctx, "ip", AttemptWindow)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLogin_SinHashConfiguradoEsErrorInterno(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	uc := NewAuthUseCase(AdminCredentials{TenantID: "t1"}, JWTConfig{Secret: "x", ExpMinutes: 1}, store, logger.Nop())
	ctx := context.Background()

	for i := 0; i < MaxFailedAttempts+1; i++ {
		_, err := uc.Login(ctx, "ip", dto.LoginRequest{Password: "secret"})
		require.Error(t, err)
		assert.Equal(t, domain.KindInternal, domain.KindOf(err), "intento %d", i+1)
	}

	n, err := store.Count(ctx, "ip", AttemptWindow)
	require.NoError(t, err)
	assert.Zero(t, n, "un error de configuración no se registra como intento fallido")
}
