//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/storefront-api/pkg/config"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client)
}

func TestRedisStore_VentanaDeslizante(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	now := time.Now()
	s.now = func() time.Time { return now }
	window := 15 * time.Minute

	for i := 1; i <= 3; i++ {
		n, err := s.RecordFailure(ctx, "10.0.0.1", window)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		now = now.Add(time.Minute)
	}

	n, err := s.Count(ctx, "10.0.0.1", window)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Count(ctx, "10.0.0.2", window)
	require.NoError(t, err)
	assert.Zero(t, n, "las claves son independientes")

	// 15 minutos después del primer intento, ese intento sale de la ventana.
	now = now.Add(12 * time.Minute)
	n, err = s.Count(ctx, "10.0.0.1", window)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRedisStore_Reset(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := s.RecordFailure(ctx, "ip", time.Minute)
		require.NoError(t, err)
	}
	require.NoError(t, s.Reset(ctx, "ip"))

	n, err := s.Count(ctx, "ip", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
}
