package store

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/logger"
)

const (
	defaultRedisPrefix = "nexus:"
	redisPingTimeout   = 2 * time.Second
)

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Redis stores documents as plain string keys. When the server cannot be
// reached, at startup or on a later request, documents are served from the
// fallback backend.
type Redis struct {
	client   *redis.Client
	prefix   string
	fallback Backend
	logger   *zap.Logger

	warnedUnavailable atomic.Bool
}

func NewRedis(ctx context.Context, cfg RedisConfig, fallback Backend, log *zap.Logger) *Redis {
	log = logger.ForComponent(log, "store")
	if fallback == nil {
		fallback = NewMemory()
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisPingTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, bypassing", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		r := &Redis{prefix: prefix, fallback: fallback, logger: log}
		r.warnedUnavailable.Store(true)
		return r
	}

	return &Redis{client: client, prefix: prefix, fallback: fallback, logger: log}
}

// Available reports whether documents reach the Redis server.
func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if !r.Available() {
		return r.fallback.Get(ctx, key)
	}
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		r.warnUnavailableOnce(err)
		return r.fallback.Get(ctx, key)
	}
	return data, nil
}

func (r *Redis) Put(ctx context.Context, key string, data []byte) error {
	if !r.Available() {
		return r.fallback.Put(ctx, key, data)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, 0).Err(); err != nil {
		if ctx.Err() != nil {
			return err
		}
		r.warnUnavailableOnce(err)
		return r.fallback.Put(ctx, key, data)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if !r.Available() {
		return r.fallback.Delete(ctx, key)
	}
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		if ctx.Err() != nil {
			return err
		}
		r.warnUnavailableOnce(err)
		return r.fallback.Delete(ctx, key)
	}
	return nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis request failed, using fallback", zap.Error(err))
	}
}
