package infra_redis_init

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/DMQQ/movie-picker-server/internal/config"
	"github.com/go-redis/redis"
)

// EstablishConn dials redis and pings it once. The client is closed
// again when the ping fails.
func EstablishConn(cfg config.RedisCache, logger *slog.Logger) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       0,
	})

	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	logger.Info("redis connected", slog.String("addr", addr))
	return client, nil
}
