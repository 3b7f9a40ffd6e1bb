package ports

import "context"

// ObserverSink is one live observer connection. Send failures mean
// the observer missed the message; delivery is best-effort.
type ObserverSink interface {
	Send(ctx context.Context, message string) error
}
