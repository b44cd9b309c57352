package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/calculadrink/platform/internal/observability/metrics"
)

// QueuePublisher is the queue side of the bus; nil when no broker is
// configured.
type QueuePublisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Bus fans lifecycle events out to the admin live feed (hub) and to the
// notification queue. Emission is best-effort: a failed sink is logged and
// counted, never propagated to the caller, so a broker outage cannot fail an
// admin action that already committed.
type Bus struct {
	hub    *Hub
	queue  QueuePublisher
	logger *slog.Logger
}

// NewBus wires the available sinks; either may be nil.
func NewBus(hub *Hub, queue QueuePublisher, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{hub: hub, queue: queue, logger: logger}
}

// Emit publishes an event to every configured sink.
func (b *Bus) Emit(ctx context.Context, action, companyID, companyName, detail string) {
	e := Event{
		Action:      action,
		CompanyID:   companyID,
		CompanyName: companyName,
		Detail:      detail,
		Timestamp:   time.Now().UTC(),
	}

	if b.hub != nil {
		if payload, err := json.Marshal(e); err == nil {
			b.hub.Broadcast(payload)
			metrics.ObserveEventPublished("feed", "ok")
		}
	}

	if b.queue != nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := b.queue.Publish(pubCtx, e); err != nil {
			b.logger.Error("event publish failed",
				slog.String("action", action),
				slog.String("company_id", companyID),
				slog.String("error", err.Error()),
			)
			metrics.ObserveEventPublished("queue", "error")
			return
		}
		metrics.ObserveEventPublished("queue", "ok")
	}
}
