package ws_room

import (
	"context"
	"log/slog"
	"time"

	"github.com/DMQQ/movie-picker-server/internal/config"
	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/gorilla/websocket"
)

const maxMessageSize = 64 << 10

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	ref    model.ConnRef
	userID model.UserID

	cfg    config.WebSocket
	logger *slog.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, ref model.ConnRef, userID model.UserID, cfg config.WebSocket, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, cfg.SendBuffer),
		ref:    ref,
		userID: userID,
		cfg:    cfg,
		logger: logger,
	}
}

// StartReading feeds every text frame to handle until the socket fails or
// a pong is overdue, then runs onClose once.
func (c *Client) StartReading(ctx context.Context, handle func(ctx context.Context, ref model.ConnRef, raw []byte), onClose func(ctx context.Context, ref model.ConnRef)) {
	defer func() {
		onClose(ctx, c.ref)
		c.hub.Unregister(c.ref)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		kind, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("connection lost",
					slog.String("conn_id", string(c.ref)),
					slog.String("user_id", c.userID),
					slog.Any("error", err))
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		handle(ctx, c.ref, raw)
	}
}

// StartWriting drains the send queue and pings on an interval.
func (c *Client) StartWriting() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
