// Package storage holds the row layout shared by the SQL ledger stores and
// the conversion between rows and the domain.Ledger aggregate.
package storage

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"crowdfund-escrow/internal/core/domain"
)

// CampaignRecord is one row of the campaigns table. JSON columns are kept
// as raw bytes so each driver can bind them as jsonb or TEXT.
type CampaignRecord struct {
	ID              string
	Creator         string
	Admin           string
	Token           string
	Goal            int64
	HardCap         int64
	Deadline        int64
	MinContribution int64
	TotalRaised     int64
	TotalPledged    int64
	Status          string
	Paused          bool
	PlatformAddress *string
	PlatformFeeBps  *int64
	CodeHash        string
	Version         int64
	Metadata        []byte
	RewardTiers     []byte
	StretchGoals    []byte
	Roadmap         []byte
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AccountRecord is one row of the campaign_accounts table. The *Seq
// columns carry the insertion rank in the corresponding ordered set, or
// nil when the address is not a member.
type AccountRecord struct {
	Address            string
	Contribution       int64
	Pledge             int64
	ReferralTotal      int64
	LastContributionAt *int64
	ContributorSeq     *int64
	PledgerSeq         *int64
	WhitelistSeq       *int64
}

// Encode flattens l into rows. Every address that has an account or
// belongs to one of the ordered sets gets exactly one AccountRecord,
// sorted by address.
func Encode(l *domain.Ledger) (CampaignRecord, []AccountRecord, error) {
	c := l.Campaign
	rec := CampaignRecord{
		ID:              c.ID,
		Creator:         c.Creator.String(),
		Admin:           c.Admin.String(),
		Token:           c.Token.String(),
		Goal:            int64(c.Goal),
		HardCap:         int64(c.HardCap),
		Deadline:        c.Deadline,
		MinContribution: int64(c.MinContribution),
		TotalRaised:     int64(c.TotalRaised),
		TotalPledged:    int64(c.TotalPledged),
		Status:          string(c.Status),
		Paused:          c.Paused,
		CodeHash:        c.CodeHash,
		Version:         int64(c.Version),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.Platform != nil {
		addr := c.Platform.Address.String()
		fee := int64(c.Platform.FeeBps)
		rec.PlatformAddress, rec.PlatformFeeBps = &addr, &fee
	}
	var err error
	if rec.Metadata, err = json.Marshal(c.Metadata); err != nil {
		return CampaignRecord{}, nil, fmt.Errorf("encode metadata: %w", err)
	}
	if rec.RewardTiers, err = json.Marshal(nonNil(l.RewardTiers)); err != nil {
		return CampaignRecord{}, nil, fmt.Errorf("encode reward tiers: %w", err)
	}
	if rec.StretchGoals, err = json.Marshal(nonNil(l.StretchGoals)); err != nil {
		return CampaignRecord{}, nil, fmt.Errorf("encode stretch goals: %w", err)
	}
	if rec.Roadmap, err = json.Marshal(nonNil(l.Roadmap)); err != nil {
		return CampaignRecord{}, nil, fmt.Errorf("encode roadmap: %w", err)
	}

	addrs := make(map[domain.Address]struct{}, len(l.Accounts))
	for a := range l.Accounts {
		addrs[a] = struct{}{}
	}
	for _, set := range []*domain.AddressSet{&l.Contributors, &l.Pledgers, &l.Whitelist} {
		for _, a := range set.Items() {
			addrs[a] = struct{}{}
		}
	}
	accounts := make([]AccountRecord, 0, len(addrs))
	for a := range addrs {
		acc := l.AccountOf(a)
		accounts = append(accounts, AccountRecord{
			Address:            a.String(),
			Contribution:       int64(acc.Contribution),
			Pledge:             int64(acc.Pledge),
			ReferralTotal:      int64(acc.ReferralTotal),
			LastContributionAt: acc.LastContributionAt,
			ContributorSeq:     seq(&l.Contributors, a),
			PledgerSeq:         seq(&l.Pledgers, a),
			WhitelistSeq:       seq(&l.Whitelist, a),
		})
	}
	slices.SortFunc(accounts, func(x, y AccountRecord) int { return cmp.Compare(x.Address, y.Address) })
	return rec, accounts, nil
}

// Decode rebuilds the aggregate from rows. Set order follows the stored
// sequence numbers.
func Decode(rec CampaignRecord, accounts []AccountRecord) (*domain.Ledger, error) {
	status := domain.Status(rec.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("campaign %s: unknown status %q", rec.ID, rec.Status)
	}
	l := &domain.Ledger{
		Campaign: domain.Campaign{
			ID:              rec.ID,
			Creator:         domain.Address(rec.Creator),
			Admin:           domain.Address(rec.Admin),
			Token:           domain.Address(rec.Token),
			Goal:            domain.Amount(rec.Goal),
			HardCap:         domain.Amount(rec.HardCap),
			Deadline:        rec.Deadline,
			MinContribution: domain.Amount(rec.MinContribution),
			Status:          status,
			TotalRaised:     domain.Amount(rec.TotalRaised),
			TotalPledged:    domain.Amount(rec.TotalPledged),
			Paused:          rec.Paused,
			CodeHash:        rec.CodeHash,
			Version:         uint32(rec.Version),
			CreatedAt:       rec.CreatedAt.UTC(),
			UpdatedAt:       rec.UpdatedAt.UTC(),
		},
		Accounts: make(map[domain.Address]*domain.Account, len(accounts)),
	}
	if rec.PlatformAddress != nil {
		p := &domain.PlatformConfig{Address: domain.Address(*rec.PlatformAddress)}
		if rec.PlatformFeeBps != nil {
			p.FeeBps = uint32(*rec.PlatformFeeBps)
		}
		l.Campaign.Platform = p
	}
	if err := unmarshal(rec.Metadata, &l.Campaign.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if err := unmarshal(rec.RewardTiers, &l.RewardTiers); err != nil {
		return nil, fmt.Errorf("decode reward tiers: %w", err)
	}
	if err := unmarshal(rec.StretchGoals, &l.StretchGoals); err != nil {
		return nil, fmt.Errorf("decode stretch goals: %w", err)
	}
	if err := unmarshal(rec.Roadmap, &l.Roadmap); err != nil {
		return nil, fmt.Errorf("decode roadmap: %w", err)
	}

	for _, a := range accounts {
		if a.Contribution == 0 && a.Pledge == 0 && a.ReferralTotal == 0 && a.LastContributionAt == nil {
			continue
		}
		l.Accounts[domain.Address(a.Address)] = &domain.Account{
			Contribution:       domain.Amount(a.Contribution),
			Pledge:             domain.Amount(a.Pledge),
			ReferralTotal:      domain.Amount(a.ReferralTotal),
			LastContributionAt: a.LastContributionAt,
		}
	}
	l.Contributors = rebuild(accounts, func(a AccountRecord) *int64 { return a.ContributorSeq })
	l.Pledgers = rebuild(accounts, func(a AccountRecord) *int64 { return a.PledgerSeq })
	l.Whitelist = rebuild(accounts, func(a AccountRecord) *int64 { return a.WhitelistSeq })
	return l, nil
}

func rebuild(accounts []AccountRecord, rank func(AccountRecord) *int64) domain.AddressSet {
	type member struct {
		addr string
		seq  int64
	}
	var members []member
	for _, a := range accounts {
		if s := rank(a); s != nil {
			members = append(members, member{addr: a.Address, seq: *s})
		}
	}
	slices.SortFunc(members, func(x, y member) int { return cmp.Compare(x.seq, y.seq) })
	addrs := make([]domain.Address, len(members))
	for i, m := range members {
		addrs[i] = domain.Address(m.addr)
	}
	return domain.NewAddressSet(addrs...)
}

func seq(s *domain.AddressSet, a domain.Address) *int64 {
	p := s.Position(a)
	if p < 0 {
		return nil
	}
	v := int64(p)
	return &v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
