package ws_room

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/DMQQ/movie-picker-server/internal/config"
	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Controller struct {
	hub        *Hub
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
	cfg        config.WebSocket

	// Outlives any single request so a pending catalog fetch is not
	// cancelled by the requester's connection closing.
	baseCtx context.Context

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithContext(ctx context.Context) ControllerOption {
	return func(c *Controller) {
		c.baseCtx = ctx
	}
}

func NewController(hub *Hub, dispatcher *Dispatcher, cfg config.WebSocket, opts ...ControllerOption) *Controller {
	c := &Controller{
		hub:        hub,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		cfg:     cfg,
		baseCtx: context.Background(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", c.serve)
}

func (c *Controller) serve(ctx *gin.Context) {
	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	ref := model.ConnRef(uuid.NewString())
	userID := ConnUserID(ctx.GetHeader(c.cfg.UserHeader), ref)

	client := NewClient(c.hub, conn, ref, userID, c.cfg, c.logger)
	c.hub.Register(client)
	c.dispatcher.Connect(ref, userID)

	go client.StartWriting()
	go client.StartReading(c.baseCtx, c.dispatcher.Handle, c.dispatcher.Disconnect)
}

// ConnUserID is "<header>-<conn>", or just the connection id when the
// client sent no user header.
func ConnUserID(header string, ref model.ConnRef) model.UserID {
	if header == "" {
		return string(ref)
	}
	return header + "-" + string(ref)
}
