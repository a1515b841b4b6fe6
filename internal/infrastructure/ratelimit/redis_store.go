package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/config"
)

var _ repository.LoginAttemptStore = (*RedisStore)(nil)

// RedisStore guarda cada intento fallido en un sorted set por clave (score = instante en ms).
// La ventana deslizante se aplica recortando los miembros más antiguos antes de contar.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore construye el almacén sobre un cliente existente.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, keyPrefix: "login:attempts:", now: time.Now}
}

func (s *RedisStore) key(k string) string { return s.keyPrefix + k }

// RecordFailure agrega el intento, recorta la ventana y cuenta en un solo pipeline MULTI/EXEC.
func (s *RedisStore) RecordFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	now := s.now()
	k := s.key(key)
	minScore := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	var card *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, k, "-inf", minScore)
		p.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})
		card = p.ZCard(ctx, k)
		p.PExpire(ctx, k, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("registrar intento fallido: %w", err)
	}
	return int(card.Val()), nil
}

// Count intentos dentro de la ventana.
func (s *RedisStore) Count(ctx context.Context, key string, window time.Duration) (int, error) {
	minScore := strconv.FormatInt(s.now().Add(-window).UnixMilli(), 10)
	n, err := s.client.ZCount(ctx, s.key(key), "("+minScore, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("contar intentos: %w", err)
	}
	return int(n), nil
}

// Reset borra el historial de la clave (login correcto).
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("limpiar intentos: %w", err)
	}
	return nil
}
