package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
)

// Hub is the registry of live observer connections. Delivery is
// best-effort: no retry, no backpressure, per-sink failures are logged
// and ignored so a dead observer cannot affect the others.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	sinks map[string]ports.ObserverSink
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		sinks:  map[string]ports.ObserverSink{},
	}
}

func (h *Hub) Register(connectionID string, sink ports.ObserverSink) {
	h.mu.Lock()
	h.sinks[connectionID] = sink
	h.mu.Unlock()
	h.logger.Info("observer connected", "connection_id", connectionID)
}

func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	delete(h.sinks, connectionID)
	h.mu.Unlock()
	h.logger.Info("observer disconnected", "connection_id", connectionID)
}

// Broadcast pushes the event to every sink registered at time of
// delivery.
func (h *Hub) Broadcast(ctx context.Context, event domain.VoteEvent) {
	message := event.Message()

	h.mu.RLock()
	sinks := make(map[string]ports.ObserverSink, len(h.sinks))
	for id, sink := range h.sinks {
		sinks[id] = sink
	}
	h.mu.RUnlock()

	for id, sink := range sinks {
		if err := sink.Send(ctx, message); err != nil {
			h.logger.Warn("failed to deliver vote event to observer", "connection_id", id, "error", err)
		}
	}
}

func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks)
}
