package events

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-escrow/internal/core/domain"
)

func TestBusRoutesByKind(t *testing.T) {
	b := NewBus(nil)
	var contributed, all []domain.Event
	require.NoError(t, b.Subscribe(domain.EventContributed, func(ev domain.Event) {
		contributed = append(contributed, ev)
	}))
	require.NoError(t, b.SubscribeAll(func(ev domain.Event) {
		all = append(all, ev)
	}))

	b.Publish(context.Background(),
		domain.Event{Kind: domain.EventContributed, CampaignID: "c1", Amount: 10},
		domain.Event{Kind: domain.EventWithdrawn, CampaignID: "c1"},
	)

	require.Len(t, contributed, 1)
	assert.Equal(t, domain.Amount(10), contributed[0].Amount)
	require.Len(t, all, 2)
	assert.Equal(t, domain.EventWithdrawn, all[1].Kind)
}

func TestBusSurvivesPanickingHandler(t *testing.T) {
	var buf bytes.Buffer
	b := NewBus(slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, b.Subscribe(domain.EventCancelled, func(domain.Event) {
		panic("boom")
	}))
	delivered := 0
	require.NoError(t, b.SubscribeAll(func(domain.Event) { delivered++ }))

	b.Publish(context.Background(),
		domain.Event{Kind: domain.EventCancelled, CampaignID: "c1"},
		domain.Event{Kind: domain.EventRefunded, CampaignID: "c1"},
	)

	assert.Equal(t, 2, delivered)
	assert.Contains(t, buf.String(), "event handler panicked")
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := LogHandler(slog.New(slog.NewTextHandler(&buf, nil)))
	h(domain.Event{
		ID:         "e1",
		Kind:       domain.EventFeeTransferred,
		CampaignID: "c1",
		Address:    "platform",
		Amount:     25,
		Attrs:      map[string]string{"fee_bps": "250"},
	})
	out := buf.String()
	assert.Contains(t, out, "kind=fee_transferred")
	assert.Contains(t, out, "address=platform")
	assert.Contains(t, out, "amount=25")
	assert.Contains(t, out, "fee_bps=250")
}
