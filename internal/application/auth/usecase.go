package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/jwt"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// Límite de intentos fallidos por cliente.
const (
	MaxFailedAttempts = 5
	AttemptWindow     = 15 * time.Minute
)

// AdminSubject y AdminRole identifican al único administrador en el token.
const (
	AdminSubject = "admin"
	AdminRole    = "admin"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AdminCredentials credenciales configuradas. Email vacío desactiva la verificación del email.
type AdminCredentials struct {
	Email        string
	PasswordHash string
	TenantID     string
}

// LoginResult token emitido y su vencimiento.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// AuthUseCase login del administrador con límite de intentos fallidos.
type AuthUseCase struct {
	admin    AdminCredentials
	jwtCfg   JWTConfig
	attempts repository.LoginAttemptStore
	log      *logger.Logger
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(admin AdminCredentials, jwtCfg JWTConfig, attempts repository.LoginAttemptStore, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{admin: admin, jwtCfg: jwtCfg, attempts: attempts, log: log.Component("auth"), now: time.Now}
}

// Login verifica email/password y emite el token. clientKey identifica al cliente (IP) para el límite de intentos;
// con MaxFailedAttempts fallos dentro de AttemptWindow devuelve ErrTooManyAttempts sin verificar credenciales.
func (uc *AuthUseCase) Login(ctx context.Context, clientKey string, in dto.LoginRequest) (*LoginResult, error) {
	// Sin hash configurado es un error del servidor, no del cliente: no cuenta como intento fallido.
	if uc.admin.PasswordHash == "" {
		uc.log.Error().Msg("ADMIN_PASSWORD_HASH no configurado, login deshabilitado")
		return nil, domain.Internal(errors.New("ADMIN_PASSWORD_HASH no configurado"))
	}
	failed, err := uc.attempts.Count(ctx, clientKey, AttemptWindow)
	if err != nil {
		// Sin almacén de intentos se permite el login; queda registrado.
		uc.log.Error().Err(err).Str("client", clientKey).Msg("no se pudo consultar intentos de login")
	} else if failed >= MaxFailedAttempts {
		uc.log.Warn().Str("client", clientKey).Int("failed", failed).Msg("login bloqueado por intentos fallidos")
		return nil, domain.ErrTooManyAttempts
	}

	if !uc.checkCredentials(in) {
		n, err := uc.attempts.RecordFailure(ctx, clientKey, AttemptWindow)
		if err != nil {
			uc.log.Error().Err(err).Str("client", clientKey).Msg("no se pudo registrar intento fallido")
		}
		uc.log.Warn().Str("client", clientKey).Int("failed", n).Msg("credenciales inválidas")
		return nil, domain.ErrUnauthorized
	}

	if err := uc.attempts.Reset(ctx, clientKey); err != nil {
		uc.log.Error().Err(err).Str("client", clientKey).Msg("no se pudo limpiar intentos de login")
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, AdminSubject, uc.admin.TenantID, AdminRole, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, domain.Internal(err)
	}
	uc.log.Info().Str("client", clientKey).Str("tenant_id", uc.admin.TenantID).Msg("login de administrador")
	return &LoginResult{Token: token, ExpiresAt: uc.now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute)}, nil
}

func (uc *AuthUseCase) checkCredentials(in dto.LoginRequest) bool {
	if uc.admin.Email != "" {
		got := strings.ToLower(strings.TrimSpace(in.Email))
		want := strings.ToLower(uc.admin.Email)
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			return false
		}
	}
	return bcrypt.CompareHashAndPassword([]byte(uc.admin.PasswordHash), []byte(in.Password)) == nil
}
