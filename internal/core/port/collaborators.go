package port

import (
	"context"
	"time"

	"crowdfund-escrow/internal/core/domain"
)

// AssetService moves the fungible asset identified by token between
// accounts. Transfer must either move the full amount or fail.
type AssetService interface {
	Transfer(ctx context.Context, token, from, to domain.Address, amount domain.Amount) error
	Balance(ctx context.Context, token, addr domain.Address) (domain.Amount, error)
}

// Clock is the time oracle used for every deadline and cooldown check.
type Clock interface {
	Now() time.Time
}

// Authorizer verifies that the principal bound to ctx is allowed to act
// as the given address. It returns domain.ErrUnauthorized otherwise.
type Authorizer interface {
	Authorize(ctx context.Context, as domain.Address) error
}

// EventPublisher fans committed domain events out to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event)
}
