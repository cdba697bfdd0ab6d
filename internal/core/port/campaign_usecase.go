package port

import (
	"context"
	"time"

	"crowdfund-escrow/internal/core/domain"
)

// CampaignUseCase defines the operations exposed by the settlement engine.
// This interface represents the primary port into the application domain.
// Every mutating method runs as one atomic ledger transaction; failures are
// *domain.Error values carrying a result code.
type CampaignUseCase interface {
	// Initialize creates a campaign. The caller must be authorized as the
	// creator. An empty ID is replaced with a generated one.
	Initialize(ctx context.Context, req InitializeReq) (*CampaignView, error)

	// Contribute moves funds from the contributor into escrow, clamped to
	// the hard cap.
	Contribute(ctx context.Context, req ContributeReq) (*domain.ContributionReceipt, error)
	// Pledge records a deferred contribution without moving funds.
	Pledge(ctx context.Context, req PledgeReq) error
	// CollectPledges pulls outstanding pledges into escrow after the
	// deadline when contributions plus pledges reach the goal.
	CollectPledges(ctx context.Context, id string) (*CollectResp, error)
	// WithdrawContribution returns part of a contribution before the
	// deadline.
	WithdrawContribution(ctx context.Context, req WithdrawContributionReq) error

	// Withdraw releases the escrow to the creator (creator only).
	Withdraw(ctx context.Context, id string) (*domain.Payout, error)
	// Refund returns every contribution of a failed campaign.
	Refund(ctx context.Context, id string) (domain.Amount, error)
	// RefundSingle returns one contributor's balance of a failed campaign.
	// A zero balance is a successful no-op.
	RefundSingle(ctx context.Context, id string, contributor domain.Address) (domain.Amount, error)
	// Cancel refunds everyone and closes the campaign (creator only).
	Cancel(ctx context.Context, id string) (domain.Amount, error)

	SetPaused(ctx context.Context, id string, paused bool) error
	AddToWhitelist(ctx context.Context, id string, addrs []domain.Address) ([]domain.Address, error)
	AddRewardTier(ctx context.Context, id, name string, minAmount domain.Amount) error
	AddStretchGoal(ctx context.Context, id string, milestone domain.Amount) error
	AddRoadmapItem(ctx context.Context, id string, date int64, description string) error
	UpdateMetadata(ctx context.Context, id string, update domain.MetadataUpdate) error
	UpdateDeadline(ctx context.Context, id string, deadline int64) error
	// Upgrade records a new code hash (admin only) and returns the new
	// version.
	Upgrade(ctx context.Context, id, codeHash string) (uint32, error)

	GetCampaign(ctx context.Context, id string) (*CampaignView, error)
	ListCampaigns(ctx context.Context, limit, offset int) (*CampaignList, error)
	GetStats(ctx context.Context, id string) (*domain.Stats, error)
	// ReconcileEscrow reads the escrow balance from the asset service and
	// compares it with the recorded total raised.
	ReconcileEscrow(ctx context.Context, id string) (*EscrowReconciliation, error)
	GetAccount(ctx context.Context, id string, addr domain.Address) (*AccountView, error)
	GetContributors(ctx context.Context, id string) ([]domain.Address, error)
	// GetUserTier returns nil when the address qualifies for no tier.
	GetUserTier(ctx context.Context, id string, addr domain.Address) (*domain.RewardTier, error)
	CurrentMilestone(ctx context.Context, id string) (domain.Amount, error)
}

// InitializeReq carries the arguments of initialize.
type InitializeReq struct {
	ID              string                 `json:"id"`
	Creator         domain.Address         `json:"creator"`
	Admin           domain.Address         `json:"admin"`
	Token           domain.Address         `json:"token"`
	Goal            domain.Amount          `json:"goal"`
	HardCap         domain.Amount          `json:"hard_cap"`
	Deadline        int64                  `json:"deadline"`
	MinContribution domain.Amount          `json:"min_contribution"`
	Platform        *domain.PlatformConfig `json:"platform,omitempty"`
	Metadata        domain.Metadata        `json:"metadata"`
}

type ContributeReq struct {
	CampaignID  string         `json:"-"`
	Contributor domain.Address `json:"contributor"`
	Amount      domain.Amount  `json:"amount"`
	Referral    domain.Address `json:"referral,omitempty"`
}

type PledgeReq struct {
	CampaignID string         `json:"-"`
	Pledger    domain.Address `json:"pledger"`
	Amount     domain.Amount  `json:"amount"`
}

type WithdrawContributionReq struct {
	CampaignID  string         `json:"-"`
	Contributor domain.Address `json:"contributor"`
	Amount      domain.Amount  `json:"amount"`
}

// CollectResp reports collected and skipped pledgers.
type CollectResp struct {
	Collected  domain.Amount    `json:"collected"`
	Collectors []domain.Address `json:"collectors"`
	Failed     []PledgeFailure  `json:"failed"`
}

type PledgeFailure struct {
	Pledger domain.Address `json:"pledger"`
	Amount  domain.Amount  `json:"amount"`
	Error   string         `json:"error"`
}

// CampaignView is the read model of a campaign. It is a DTO used by the
// HTTP layer and does not contain domain behaviour.
type CampaignView struct {
	ID               string                 `json:"id"`
	Creator          domain.Address         `json:"creator"`
	Admin            domain.Address         `json:"admin"`
	Token            domain.Address         `json:"token"`
	Escrow           domain.Address         `json:"escrow"`
	Goal             domain.Amount          `json:"goal"`
	HardCap          domain.Amount          `json:"hard_cap"`
	Deadline         int64                  `json:"deadline"`
	MinContribution  domain.Amount          `json:"min_contribution"`
	Status           domain.Status          `json:"status"`
	TotalRaised      domain.Amount          `json:"total_raised"`
	TotalPledged     domain.Amount          `json:"total_pledged"`
	Paused           bool                   `json:"paused"`
	Platform         *domain.PlatformConfig `json:"platform,omitempty"`
	Metadata         domain.Metadata        `json:"metadata"`
	RewardTiers      []domain.RewardTier    `json:"reward_tiers"`
	StretchGoals     []domain.Amount        `json:"stretch_goals"`
	Roadmap          []domain.RoadmapItem   `json:"roadmap"`
	ContributorCount int                    `json:"contributor_count"`
	PledgerCount     int                    `json:"pledger_count"`
	WhitelistSize    int                    `json:"whitelist_size"`
	CodeHash         string                 `json:"code_hash,omitempty"`
	Version          uint32                 `json:"version"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// CampaignList is one page of the campaign registry.
type CampaignList struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

// EscrowReconciliation reports whether the asset service agrees with the
// ledger about the funds held in escrow.
type EscrowReconciliation struct {
	Escrow      domain.Address `json:"escrow"`
	Token       domain.Address `json:"token"`
	Balance     domain.Amount  `json:"balance"`
	TotalRaised domain.Amount  `json:"total_raised"`
	Balanced    bool           `json:"balanced"`
}

// AccountView is the per-address read model.
type AccountView struct {
	Address            domain.Address     `json:"address"`
	Contribution       domain.Amount      `json:"contribution"`
	Pledge             domain.Amount      `json:"pledge"`
	ReferralTotal      domain.Amount      `json:"referral_total"`
	LastContributionAt *int64             `json:"last_contribution_at,omitempty"`
	Whitelisted        bool               `json:"whitelisted"`
	Tier               *domain.RewardTier `json:"tier,omitempty"`
}

// NewCampaignView projects a ledger into its read model.
func NewCampaignView(l *domain.Ledger) *CampaignView {
	c := l.Campaign
	return &CampaignView{
		ID:               c.ID,
		Creator:          c.Creator,
		Admin:            c.Admin,
		Token:            c.Token,
		Escrow:           l.Escrow(),
		Goal:             c.Goal,
		HardCap:          c.HardCap,
		Deadline:         c.Deadline,
		MinContribution:  c.MinContribution,
		Status:           c.Status,
		TotalRaised:      c.TotalRaised,
		TotalPledged:     c.TotalPledged,
		Paused:           c.Paused,
		Platform:         c.Platform,
		Metadata:         c.Metadata,
		RewardTiers:      append([]domain.RewardTier{}, l.RewardTiers...),
		StretchGoals:     append([]domain.Amount{}, l.StretchGoals...),
		Roadmap:          append([]domain.RoadmapItem{}, l.Roadmap...),
		ContributorCount: l.Contributors.Len(),
		PledgerCount:     l.Pledgers.Len(),
		WhitelistSize:    l.Whitelist.Len(),
		CodeHash:         c.CodeHash,
		Version:          c.Version,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
