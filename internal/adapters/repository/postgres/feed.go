package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
	"github.com/lib/pq"
)

var pgChannels = map[domain.EntityKind]string{
	domain.KindVoter: "voters_changes",
	domain.KindAdmin: "admins_changes",
	domain.KindVote:  "votes_changes",
}

// Feed implements the change-notification stream over Postgres
// LISTEN/NOTIFY. Row triggers installed by the migrations call
// pg_notify with a JSON payload {"action": ..., "record": ...};
// pq.Listener maintains the connection and re-listens after a drop.
type Feed struct {
	connStr string
	logger  *slog.Logger
}

func NewFeed(connStr string, logger *slog.Logger) *Feed {
	return &Feed{
		connStr: connStr,
		logger:  logger,
	}
}

var _ ports.ChangeFeed = (*Feed)(nil)

func (f *Feed) Subscribe(ctx context.Context, kind domain.EntityKind) (<-chan domain.ChangeNotification, error) {
	channelName, ok := pgChannels[kind]
	if !ok {
		return nil, fmt.Errorf("no change channel for entity kind %q", kind)
	}

	listener := pq.NewListener(f.connStr, 10*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			f.logger.Error("change feed connection event", "channel", channelName, "error", err)
		}
	})
	if err := listener.Listen(channelName); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", channelName, err)
	}

	out := make(chan domain.ChangeNotification)
	go f.forward(ctx, kind, channelName, listener, out)
	return out, nil
}

func (f *Feed) forward(ctx context.Context, kind domain.EntityKind, channelName string, listener *pq.Listener, out chan<- domain.ChangeNotification) {
	defer close(out)
	defer listener.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-listener.Notify:
			if !ok {
				return
			}
			if raw == nil {
				// Reconnect marker; the caches self-heal on the next
				// real notification.
				continue
			}

			notification, err := parseNotification(kind, raw.Extra)
			if err != nil {
				f.logger.Error("malformed change notification skipped", "channel", channelName, "error", err)
				continue
			}

			select {
			case out <- notification:
			case <-ctx.Done():
				return
			}
		}
	}
}

type notifyPayload struct {
	Action string          `json:"action"`
	Record json.RawMessage `json:"record"`
}

func parseNotification(kind domain.EntityKind, payload string) (domain.ChangeNotification, error) {
	var decoded notifyPayload
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return domain.ChangeNotification{}, fmt.Errorf("failed to decode payload: %w", err)
	}

	action := domain.ChangeAction(decoded.Action)
	switch action {
	case domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete:
	default:
		return domain.ChangeNotification{}, fmt.Errorf("unknown action %q", decoded.Action)
	}

	notification := domain.ChangeNotification{Action: action}
	if kind == domain.KindVote {
		if err := json.Unmarshal(decoded.Record, &notification.Vote); err != nil {
			return domain.ChangeNotification{}, fmt.Errorf("failed to decode vote record: %w", err)
		}
	}
	return notification, nil
}
