package redisStore

import (
	"context"
	"fmt"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Store is a thin wrapper over one redis logical database.
type Store struct {
	client *redis.Client
	DB     int
	logger *logger_i.Logger
}

// Connect dials redis and pings it. A failed ping closes the client and errors.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		opts.Addr = config.RedisAddr
	}
	client := redis.NewClient(&redis.Options{
		Addr:                  opts.Addr,
		Password:              opts.Password,
		DB:                    opts.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           config.RedisIOTimeout,
		WriteTimeout:          config.RedisIOTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, config.RedisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s db %d offline: %w", opts.Addr, opts.DB, err)
	}

	s := NewStore(client)
	s.DB = opts.DB
	s.logger.Info("Redis store connected", "addr", opts.Addr, "db", opts.DB)
	return s, nil
}

// NewStore wraps an existing client, e.g. one pointed at miniredis.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("Redis Store"),
	}
}

func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "error", err, "db", s.DB)
		return err
	}
	return nil
}
