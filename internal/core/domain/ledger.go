package domain

import (
	"strconv"
	"time"
)

const (
	// ContributionCooldown is the minimum number of seconds between two
	// contributions from the same address.
	ContributionCooldown int64 = 5
	// MaxFeeBps is 100% expressed in basis points.
	MaxFeeBps = 10_000
	// MaxWhitelistBatch bounds a single whitelist call.
	MaxWhitelistBatch = 100
	// InitialVersion is the version a campaign starts with.
	InitialVersion uint32 = 1
)

// Account is the per-address state of a campaign. Accounts are zeroed,
// never deleted.
type Account struct {
	Contribution       Amount
	Pledge             Amount
	ReferralTotal      Amount
	LastContributionAt *int64
}

// Ledger is the aggregate for one campaign: the scalar campaign fields,
// every per-address account and the ordered collections. All operations
// mutate it in memory; the caller persists it inside one transaction.
type Ledger struct {
	Campaign     Campaign
	Accounts     map[Address]*Account
	Contributors AddressSet
	Pledgers     AddressSet
	Whitelist    AddressSet
	RewardTiers  []RewardTier
	StretchGoals []Amount
	Roadmap      []RoadmapItem

	events []Event
}

// Transfer is one movement of the campaign asset.
type Transfer struct {
	From   Address
	To     Address
	Amount Amount
}

// TransferFunc executes a transfer on the asset service. A non-nil error
// aborts the calling operation.
type TransferFunc func(Transfer) error

// InitParams carries the arguments of initialize.
type InitParams struct {
	ID              string
	Creator         Address
	Admin           Address
	Token           Address
	Goal            Amount
	HardCap         Amount
	Deadline        int64
	MinContribution Amount
	Platform        *PlatformConfig
	Metadata        Metadata
}

// NewLedger validates p and returns a fresh Active ledger. Uniqueness of
// the ID is the store's concern.
func NewLedger(p InitParams, now time.Time) (*Ledger, error) {
	if p.ID == "" {
		return nil, Newf(CodeInvalidArgument, "campaign id is required")
	}
	if err := checkParty(p.Creator, "creator"); err != nil {
		return nil, err
	}
	if p.Admin.IsEscrow() {
		return nil, Newf(CodeInvalidArgument, "admin must not be an escrow account")
	}
	if p.Token.IsZero() {
		return nil, Newf(CodeInvalidArgument, "token is required")
	}
	if p.Goal <= 0 {
		return nil, Newf(CodeInvalidAmount, "goal must be greater than 0")
	}
	if p.HardCap < 0 || (p.HardCap > 0 && p.HardCap < p.Goal) {
		return nil, ErrInvalidHardCap
	}
	if p.MinContribution < 0 {
		return nil, Newf(CodeInvalidAmount, "min_contribution must not be negative")
	}
	if p.Platform != nil {
		if err := checkParty(p.Platform.Address, "platform"); err != nil {
			return nil, err
		}
		if p.Platform.FeeBps > MaxFeeBps {
			return nil, Newf(CodeInvalidLimit, "platform fee must be at most %d bps", MaxFeeBps)
		}
	}
	admin := p.Admin
	if admin.IsZero() {
		admin = p.Creator
	}
	var platform *PlatformConfig
	if p.Platform != nil {
		cp := *p.Platform
		platform = &cp
	}
	ts := now.UTC()
	l := &Ledger{
		Campaign: Campaign{
			ID:              p.ID,
			Creator:         p.Creator,
			Admin:           admin,
			Token:           p.Token,
			Goal:            p.Goal,
			HardCap:         p.HardCap,
			Deadline:        p.Deadline,
			MinContribution: p.MinContribution,
			Status:          StatusActive,
			Platform:        platform,
			Metadata:        p.Metadata,
			Version:         InitialVersion,
			CreatedAt:       ts,
			UpdatedAt:       ts,
		},
		Accounts: make(map[Address]*Account),
	}
	l.emit(EventInitialized, p.Creator, p.Goal, map[string]string{
		"deadline": strconv.FormatInt(p.Deadline, 10),
		"token":    p.Token.String(),
	})
	return l, nil
}

// Escrow is the asset account holding this campaign's funds.
func (l *Ledger) Escrow() Address {
	return EscrowAddress(l.Campaign.ID)
}

// IsActive reports whether the campaign still accepts state changes.
func (l *Ledger) IsActive() bool {
	return l.Campaign.Status == StatusActive
}

// DeadlinePassed reports whether now is strictly after the deadline.
func (l *Ledger) DeadlinePassed(now int64) bool {
	return now > l.Campaign.Deadline
}

// GoalMet reports whether the raised total reached the goal.
func (l *Ledger) GoalMet() bool {
	return l.Campaign.TotalRaised >= l.Campaign.Goal
}

func (l *Ledger) requireActive() error {
	if !l.IsActive() {
		return ErrNotActive
	}
	return nil
}

// AccountOf returns a copy of the account for a, zero when unknown.
func (l *Ledger) AccountOf(a Address) Account {
	if acc, ok := l.Accounts[a]; ok {
		return *acc
	}
	return Account{}
}

// ContributionOf is the current contribution balance of a.
func (l *Ledger) ContributionOf(a Address) Amount { return l.AccountOf(a).Contribution }

// PledgeOf is the outstanding pledge of a.
func (l *Ledger) PledgeOf(a Address) Amount { return l.AccountOf(a).Pledge }

// ReferralTotalOf is the amount credited to a as referrer.
func (l *Ledger) ReferralTotalOf(a Address) Amount { return l.AccountOf(a).ReferralTotal }

// IsWhitelisted reports whether a was added to the whitelist.
func (l *Ledger) IsWhitelisted(a Address) bool { return l.Whitelist.Contains(a) }

func (l *Ledger) account(a Address) *Account {
	if l.Accounts == nil {
		l.Accounts = make(map[Address]*Account)
	}
	acc, ok := l.Accounts[a]
	if !ok {
		acc = &Account{}
		l.Accounts[a] = acc
	}
	return acc
}

func (l *Ledger) emit(kind EventKind, addr Address, amount Amount, attrs map[string]string) {
	l.events = append(l.events, Event{
		Kind:       kind,
		CampaignID: l.Campaign.ID,
		Address:    addr,
		Amount:     amount,
		Attrs:      attrs,
	})
}

// DrainEvents returns the events emitted since the last call and clears
// the buffer.
func (l *Ledger) DrainEvents() []Event {
	ev := l.events
	l.events = nil
	return ev
}

func pay(fn TransferFunc, t Transfer) error {
	if t.Amount == 0 {
		return nil
	}
	if err := fn(t); err != nil {
		return Wrap(CodeTransferFailed, "transfer "+t.From.String()+" -> "+t.To.String(), err)
	}
	return nil
}
