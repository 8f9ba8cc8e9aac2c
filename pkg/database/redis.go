package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the collection store Redis.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	// OpTimeout bounds reads and writes. Zero keeps the go-redis defaults.
	OpTimeout time.Duration
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c RedisConfig) options() *redis.Options {
	opts := &redis.Options{
		Addr:     c.Addr(),
		Password: c.Password,
		DB:       c.DB,
	}
	if c.OpTimeout > 0 {
		opts.ReadTimeout = c.OpTimeout
		opts.WriteTimeout = c.OpTimeout
	}
	return opts
}

// NewRedisClient connects and pings Redis. The client is closed again when
// the ping fails.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(cfg.options())

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
