package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ValoresPorDefecto(t *testing.T) {
	cfg, err := build(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "dev_secret", cfg.JWT.Secret, "en development se usa el secreto de desarrollo")
	assert.Equal(t, 480, cfg.JWT.Expiration)
	assert.Equal(t, 5, cfg.Store.OrderLowStockThreshold)
	assert.Equal(t, 10, cfg.Store.DashboardLowStock)
	assert.Equal(t, PriceAuthorityClient, cfg.Store.PriceAuthority)
	assert.Equal(t, cfg.Admin.TenantID, cfg.Store.StorefrontTenantID)
	assert.Equal(t, 30*time.Second, cfg.Notifier.Interval)
	assert.Equal(t, 20, cfg.Notifier.BatchSize)
	assert.Equal(t, 5, cfg.Notifier.MaxTries)
	assert.False(t, cfg.Telegram.Enabled())
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Empty(t, cfg.Notifier.MetricsAddr)
}

func TestBuild_BanderasOpcionales(t *testing.T) {
	v := viper.New()
	v.Set("DB_AUTO_MIGRATE", "true")
	v.Set("NOTIFIER_METRICS_ADDR", ":9091")

	cfg, err := build(v)
	require.NoError(t, err)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, ":9091", cfg.Notifier.MetricsAddr)

	v.Set("DB_AUTO_MIGRATE", "quizás")
	cfg, err = build(v)
	require.NoError(t, err)
	assert.False(t, cfg.DB.AutoMigrate, "un valor no booleano usa el valor por defecto")
}

func TestBuild_SinSecretoEnProduccion(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")

	_, err := build(v)
	assert.Error(t, err)
}

func TestBuild_AutoridadDePrecioInvalida(t *testing.T) {
	v := viper.New()
	v.Set("ORDER_PRICE_AUTHORITY", "cliente")

	_, err := build(v)
	assert.Error(t, err)
}

func TestBuild_UmbralExplicitoAplicaAAmbos(t *testing.T) {
	v := viper.New()
	v.Set("LOW_STOCK_THRESHOLD", "3")
	v.Set("TELEGRAM_BOT_TOKEN", "123:abc")
	v.Set("TELEGRAM_CHAT_ID", "-100")

	cfg, err := build(v)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Store.OrderLowStockThreshold)
	assert.Equal(t, 3, cfg.Store.DashboardLowStock)
	assert.True(t, cfg.Telegram.Enabled())
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "store", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/store?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
