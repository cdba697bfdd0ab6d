// Package events fans committed domain events out to in-process
// subscribers on top of asaskevich/EventBus.
package events

import (
	"context"
	"fmt"
	"log/slog"

	evbus "github.com/asaskevich/EventBus"

	"crowdfund-escrow/internal/core/domain"
)

// topicAll receives every event regardless of kind.
const topicAll = "campaign:*"

func topic(kind domain.EventKind) string {
	return "campaign:" + string(kind)
}

// Handler consumes one published event. Handlers run synchronously on
// the publishing goroutine and must not block.
type Handler func(domain.Event)

// Bus implements port.EventPublisher.
type Bus struct {
	bus    evbus.Bus
	logger *slog.Logger
}

// NewBus returns an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{bus: evbus.New(), logger: logger}
}

// Subscribe registers h for events of the given kind.
func (b *Bus) Subscribe(kind domain.EventKind, h Handler) error {
	if err := b.bus.Subscribe(topic(kind), h); err != nil {
		return fmt.Errorf("subscribe %s: %w", kind, err)
	}
	return nil
}

// SubscribeAll registers h for every event.
func (b *Bus) SubscribeAll(h Handler) error {
	if err := b.bus.Subscribe(topicAll, h); err != nil {
		return fmt.Errorf("subscribe all: %w", err)
	}
	return nil
}

// Publish delivers events in order, first to kind subscribers and then to
// catch-all subscribers. A panicking handler is logged and does not stop
// delivery of the remaining events.
func (b *Bus) Publish(ctx context.Context, events ...domain.Event) {
	for _, ev := range events {
		b.deliver(ctx, topic(ev.Kind), ev)
		b.deliver(ctx, topicAll, ev)
	}
}

func (b *Bus) deliver(ctx context.Context, t string, ev domain.Event) {
	if !b.bus.HasCallback(t) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "event handler panicked",
				slog.String("topic", t),
				slog.String("campaign_id", ev.CampaignID),
				slog.Any("panic", r),
			)
		}
	}()
	b.bus.Publish(t, ev)
}

// LogHandler returns a handler that writes every event to logger.
func LogHandler(logger *slog.Logger) Handler {
	return func(ev domain.Event) {
		attrs := []any{
			slog.String("event_id", ev.ID),
			slog.String("kind", string(ev.Kind)),
			slog.String("campaign_id", ev.CampaignID),
			slog.Int64("at", ev.At),
		}
		if !ev.Address.IsZero() {
			attrs = append(attrs, slog.String("address", ev.Address.String()))
		}
		if ev.Amount != 0 {
			attrs = append(attrs, slog.Int64("amount", int64(ev.Amount)))
		}
		for k, v := range ev.Attrs {
			attrs = append(attrs, slog.String(k, v))
		}
		logger.Info("campaign event", attrs...)
	}
}
