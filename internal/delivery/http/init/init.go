package http_init

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

type Controller interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type ControllerPool struct {
	pool   []Controller
	rg     *gin.RouterGroup
	engine *gin.Engine
	server *http.Server

	logger *slog.Logger
}

func NewControllerPool(logger *slog.Logger) *ControllerPool {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	rg := engine.Group(apiPrefix)
	return &ControllerPool{
		pool:   make([]Controller, 0, 10),
		rg:     rg,
		engine: engine,
		server: &http.Server{Handler: engine},
		logger: logger,
	}
}

func (pool *ControllerPool) Add(c Controller) {
	pool.pool = append(pool.pool, c)
}

func (pool *ControllerPool) Register() {
	for _, c := range pool.pool {
		c.RegisterRoutes(pool.rg)
	}
}

func (pool *ControllerPool) Handler() http.Handler {
	return pool.engine
}

// RunAll serves until Shutdown. A clean shutdown returns nil.
func (pool *ControllerPool) RunAll(host, port string) error {
	pool.server.Addr = net.JoinHostPort(host, port)
	pool.logger.Info("http listening", slog.String("addr", pool.server.Addr))

	if err := pool.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (pool *ControllerPool) Shutdown(ctx context.Context) error {
	return pool.server.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		logger.Debug("http request",
			slog.String("method", ctx.Request.Method),
			slog.String("path", ctx.FullPath()),
			slog.Int("status", ctx.Writer.Status()))
	}
}
