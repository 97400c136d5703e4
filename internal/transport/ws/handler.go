package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/gomoku-go/internal/protocol"
	"github.com/mcoot/gomoku-go/internal/services/lobby"
)

// Handler accepts WebSocket connections and runs one sequential worker per connection
type Handler struct {
	lobby    *lobby.Controller
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a Handler dispatching into ctrl
func NewHandler(ctrl *lobby.Controller, logger *slog.Logger) *Handler {
	return &Handler{
		lobby: ctrl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP upgrades the request and blocks until the connection ends
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		return
	}

	logger := h.logger.With(slog.String("remote_addr", r.RemoteAddr))
	client := newClient(conn, logger)
	actor := h.lobby.Connect(client, r.RemoteAddr)

	go client.writePump()

	ctx := context.WithoutCancel(r.Context())
	h.readLoop(ctx, client, actor, logger)
}

// readLoop processes requests strictly in arrival order. Any read or decode
// error ends the connection and tears the actor down.
func (h *Handler) readLoop(ctx context.Context, client *Client, actor *lobby.Actor, logger *slog.Logger) {
	connectedAt := time.Now()
	defer func() {
		actor.Teardown(ctx)
		client.close()
		logger.Info("websocket closed", slog.Duration("connection_duration", time.Since(connectedAt)))
	}()

	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Warn("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if messageType != websocket.TextMessage {
			logger.Warn("unexpected binary frame, closing")
			return
		}

		msg, err := protocol.DecodeRequest(data)
		if err != nil {
			logger.Warn("undecodable request, closing", slog.String("error", err.Error()))
			return
		}

		h.handle(ctx, actor, msg, logger)
	}
}

// handle isolates a panicking handler so the connection can still be torn down cleanly
func (h *Handler) handle(ctx context.Context, actor *lobby.Actor, msg protocol.Message, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic handling request",
				slog.String("type", string(msg.MessageType())),
				slog.Any("panic", r),
			)
		}
	}()
	actor.Handle(ctx, msg)
}
