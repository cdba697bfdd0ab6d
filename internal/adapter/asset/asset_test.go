package asset

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-escrow/internal/core/domain"
)

const usdc = domain.Address("usdc")

func TestMemoryLedgerTransfer(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()
	require.NoError(t, m.Mint(usdc, "alice", 100))

	require.NoError(t, m.Transfer(ctx, usdc, "alice", "escrow:c1", 60))
	err := m.Transfer(ctx, usdc, "alice", "escrow:c1", 41)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	bal, err := m.Balance(ctx, usdc, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(40), bal)
	bal, err = m.Balance(ctx, "other", "alice")
	require.NoError(t, err)
	assert.Zero(t, bal)

	require.ErrorIs(t, m.Transfer(ctx, usdc, "alice", "bob", 0), domain.ErrInvalidAmount)
}

func TestMemoryLedgerConcurrentTransfers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()
	require.NoError(t, m.Mint(usdc, "alice", 50))

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Transfer(ctx, usdc, "alice", "bob", 1)
		}()
	}
	wg.Wait()

	alice, _ := m.Balance(ctx, usdc, "alice")
	bob, _ := m.Balance(ctx, usdc, "bob")
	assert.Zero(t, alice)
	assert.Equal(t, domain.Amount(50), bob)
}

func TestClientAgainstHandler(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger()
	require.NoError(t, m.Mint(usdc, "alice", 500))
	r := chi.NewRouter()
	r.Mount("/tokens", NewHandler(m, slog.Default()))
	srv := httptest.NewServer(r)
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Mint(ctx, usdc, "bob", 5))
	bal, err := m.Balance(ctx, usdc, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(5), bal)

	require.NoError(t, c.Transfer(ctx, usdc, "alice", "escrow:c1", 200))
	bal, err = c.Balance(ctx, usdc, "escrow:c1")
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(200), bal)

	err = c.Transfer(ctx, usdc, "alice", "escrow:c1", 1_000)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	err = c.Transfer(ctx, usdc, "alice", "bob", -1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientFunds)
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("tokens.local", time.Second)
	require.Error(t, err)
}
