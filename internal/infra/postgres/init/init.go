package infra_pg_init

import (
	"fmt"
	"log/slog"

	"github.com/DMQQ/movie-picker-server/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func DSN(cfg config.Postgres) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// EstablishConn opens the pool and pings it.
func EstablishConn(cfg config.Postgres, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("postgres connect %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	logger.Info("postgres connected",
		slog.String("host", cfg.Host),
		slog.String("db", cfg.DBName))
	return db, nil
}
