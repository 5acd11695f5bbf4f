package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DMQQ/movie-picker-server/internal/config"
	http_catalog "github.com/DMQQ/movie-picker-server/internal/delivery/http/catalog"
	http_init "github.com/DMQQ/movie-picker-server/internal/delivery/http/init"
	ws_room "github.com/DMQQ/movie-picker-server/internal/delivery/ws/room"
	infra_grpc_health "github.com/DMQQ/movie-picker-server/internal/infra/grpc/health"
	infra_pg_init "github.com/DMQQ/movie-picker-server/internal/infra/postgres/init"
	infra_postgres_match "github.com/DMQQ/movie-picker-server/internal/infra/postgres/match"
	infra_redis_cache "github.com/DMQQ/movie-picker-server/internal/infra/redis/cache"
	infra_redis_init "github.com/DMQQ/movie-picker-server/internal/infra/redis/init"
	infra_redis_roomid_set "github.com/DMQQ/movie-picker-server/internal/infra/redis/roomid_set"
	infra_tmdb "github.com/DMQQ/movie-picker-server/internal/infra/tmdb"
	storage_catalog "github.com/DMQQ/movie-picker-server/internal/storage/catalog"
	storage_connection "github.com/DMQQ/movie-picker-server/internal/storage/connection"
	storage_room "github.com/DMQQ/movie-picker-server/internal/storage/room"
	usecase_catalog "github.com/DMQQ/movie-picker-server/internal/usecase/catalog"
	usecase_room "github.com/DMQQ/movie-picker-server/internal/usecase/room"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func Go(cfg *config.Config) {
	logger := NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	tmdb := infra_tmdb.New(cfg.Catalog, infra_tmdb.WithLogger(logger))
	catalogOpts := []storage_catalog.Option{storage_catalog.WithLogger(logger)}
	roomOpts := []usecase_room.Option{
		usecase_room.WithLogger(logger),
		usecase_room.WithFetchTimeout(cfg.Catalog.Timeout),
		usecase_room.WithIDRetries(cfg.Rooms.IDRetries),
	}

	if cfg.Redis.Enabled() {
		redisConn, err := infra_redis_init.EstablishConn(cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer redisConn.Close()

		catalogOpts = append(catalogOpts, storage_catalog.WithCache(infra_redis_cache.New(redisConn, "catalog"), cfg.Catalog.CacheTTL))
		roomOpts = append(roomOpts, usecase_room.WithIDSet(infra_redis_roomid_set.New(redisConn, "room_ids")))
	}

	if cfg.Postgres.Enabled() {
		pgConn, err := infra_pg_init.EstablishConn(cfg.Postgres, logger)
		if err != nil {
			return err
		}
		defer pgConn.Close()

		journal := infra_postgres_match.New(pgConn)
		if err := journal.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("match journal schema: %w", err)
		}
		roomOpts = append(roomOpts, usecase_room.WithJournal(journal))
	}

	catalog := storage_catalog.New(tmdb, catalogOpts...)

	roomUC := usecase_room.New(storage_room.New(), catalog, roomOpts...)
	catalogUC := usecase_catalog.New(catalog, cfg.Catalog.Timeout, usecase_catalog.WithLogger(logger))

	hub := ws_room.NewHub(logger)
	dispatcher := ws_room.NewDispatcher(roomUC, storage_connection.New(), hub, logger)

	controllerPool := http_init.NewControllerPool(logger)
	controllerPool.Add(http_catalog.New(catalogUC, http_catalog.WithLogger(logger)))
	controllerPool.Add(ws_room.NewController(hub, dispatcher, cfg.WS,
		ws_room.WithLogger(logger),
		ws_room.WithContext(context.WithoutCancel(ctx))))
	controllerPool.Register()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return controllerPool.RunAll(cfg.HTTP.Host, cfg.HTTP.Port)
	})

	var health *infra_grpc_health.Server
	if cfg.GRPC.Enabled() {
		lis, err := net.Listen("tcp", net.JoinHostPort(cfg.HTTP.Host, cfg.GRPC.HealthPort))
		if err != nil {
			return err
		}
		health = infra_grpc_health.New(infra_grpc_health.WithLogger(logger))
		g.Go(func() error {
			return health.Serve(lis)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		if health != nil {
			health.Drain()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := controllerPool.Shutdown(shutdownCtx)

		if health != nil {
			health.Stop()
		}
		return err
	})

	return g.Wait()
}

func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
