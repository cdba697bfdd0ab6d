// Package asset provides the implementations of port.AssetService: an
// in-process token ledger for development and tests, its HTTP API, and a
// client for an external token service speaking the same API.
package asset

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"crowdfund-escrow/internal/core/domain"
)

// ErrInsufficientFunds is returned when the sender cannot cover a transfer.
var ErrInsufficientFunds = errors.New("insufficient funds")

// MemoryLedger keeps balances per token and address in memory. It is safe
// for concurrent use.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[domain.Address]map[domain.Address]domain.Amount
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[domain.Address]map[domain.Address]domain.Amount)}
}

// Mint credits amount of token to an address out of thin air.
func (m *MemoryLedger) Mint(token, to domain.Address, amount domain.Amount) error {
	if amount <= 0 {
		return fmt.Errorf("mint %d: %w", amount, domain.ErrInvalidAmount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	book := m.book(token)
	next, err := book[to].Add(amount)
	if err != nil {
		return err
	}
	book[to] = next
	return nil
}

// Transfer moves amount of token from one address to another, or fails
// without side effects.
func (m *MemoryLedger) Transfer(ctx context.Context, token, from, to domain.Address, amount domain.Amount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("transfer %d: %w", amount, domain.ErrInvalidAmount)
	}
	if from == to {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	book := m.book(token)
	if book[from] < amount {
		return fmt.Errorf("%s has %d, needs %d: %w", from, book[from], amount, ErrInsufficientFunds)
	}
	credited, err := book[to].Add(amount)
	if err != nil {
		return err
	}
	book[from] -= amount
	book[to] = credited
	return nil
}

// Balance returns the balance of addr in token.
func (m *MemoryLedger) Balance(ctx context.Context, token, addr domain.Address) (domain.Amount, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[token][addr], nil
}

func (m *MemoryLedger) book(token domain.Address) map[domain.Address]domain.Amount {
	b, ok := m.balances[token]
	if !ok {
		b = make(map[domain.Address]domain.Amount)
		m.balances[token] = b
	}
	return b
}
