package websocket

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tradelink/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub streams each connected dashboard its own user's change events
type Hub struct {
	subscriber  domain.EventSubscriber
	upgrader    websocket.Upgrader
	connections atomic.Int64
	log         zerolog.Logger
}

// NewHub creates a new hub reading events from subscriber
func NewHub(subscriber domain.EventSubscriber, log zerolog.Logger) *Hub {
	return &Hub{
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			// The dashboard may be served from another origin; access is gated by the JWT.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "websocket").Logger(),
	}
}

// Connections reports the number of open streams
func (h *Hub) Connections() int64 {
	return h.connections.Load()
}

// Serve upgrades the request and pushes userID's events until the client leaves
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.log.Warn().Err(err).Msg("Error upgrading to WebSocket")
		return nil
	}
	defer ws.Close()

	// Detached from the request context: the server may cancel that once
	// the handler hijacks the connection.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, unsubscribe, err := h.subscriber.Subscribe(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to subscribe to change events")
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"),
			time.Now().Add(writeWait))
		return nil
	}
	defer unsubscribe()

	h.connections.Add(1)
	defer h.connections.Add(-1)
	h.log.Debug().Str("user_id", userID.String()).Msg("Dashboard stream opened")

	// Reader: keeps pongs flowing and notices the client going away
	go func() {
		defer cancel()
		ws.SetReadLimit(512)
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(event); err != nil {
				h.log.Debug().Err(err).Msg("Error sending event to client")
				return nil
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}
