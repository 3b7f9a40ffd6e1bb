package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/adrsyn/ballotbox/internal/core/services"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// LiveHandler upgrades observer connections and registers them with
// the broadcast hub. The read loop only services control frames; the
// channel is outbound-only.
type LiveHandler struct {
	hub      *services.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewLiveHandler(hub *services.Hub, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *LiveHandler) Votes(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade observer connection", "error", err)
		return
	}

	connectionID := uuid.NewString()
	h.hub.Register(connectionID, &connSink{conn: conn})

	go func() {
		defer func() {
			h.hub.Unregister(connectionID)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// connSink adapts one websocket connection to the hub's sink
// interface. Writes are serialized; a write deadline keeps a slow
// observer from stalling the broadcast loop.
type connSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *connSink) Send(ctx context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, []byte(message))
}
