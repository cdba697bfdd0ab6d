package port

import (
	"context"

	"crowdfund-escrow/internal/core/domain"
)

// MaxListLimit bounds a single page of ListCampaigns.
const MaxListLimit = 500

// CampaignRepository is the ledger store. It is an outbound port in
// hexagonal architecture. Implementations must run every Update in one
// transaction that holds an exclusive lock on the campaign for its whole
// duration.
type CampaignRepository interface {
	// Create persists a freshly initialized ledger. It fails with
	// domain.ErrAlreadyInitialized when the ID is taken.
	Create(ctx context.Context, l *domain.Ledger) error
	// Get loads a ledger snapshot. Unknown IDs yield domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Ledger, error)
	// List returns campaign IDs ordered by creation time and the total
	// number of campaigns.
	List(ctx context.Context, limit, offset int) ([]string, int, error)
	// Update locks the campaign, passes the loaded ledger to fn and
	// persists it when fn returns nil. Any error rolls everything back
	// and is returned unchanged.
	Update(ctx context.Context, id string, fn func(l *domain.Ledger) error) error
}
