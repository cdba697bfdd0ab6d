package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crowdfund-escrow/internal/adapter/auth"
	"crowdfund-escrow/internal/core/domain"
	"crowdfund-escrow/internal/core/port"
)

// SeedCampaignID is the ID of the demo campaign created by Seed.
const SeedCampaignID = "demo-solar-kiosk"

// SeedToken is the asset the demo campaign raises.
const SeedToken = domain.Address("usdc")

// MintFunc credits test funds to an address on the asset service.
type MintFunc func(ctx context.Context, token, to domain.Address, amount domain.Amount) error

// Seed creates a demo campaign with reward tiers, a stretch goal, a
// roadmap, a few contributions (one referred) and a pledge. Backers are
// funded through mint first. Running it twice is harmless: an existing
// demo campaign is left untouched.
func Seed(ctx context.Context, svc port.CampaignUseCase, mint MintFunc, now time.Time) error {
	const (
		creator = domain.Address("demo-creator")
		alice   = domain.Address("demo-alice")
		bob     = domain.Address("demo-bob")
		carol   = domain.Address("demo-carol")
	)
	as := func(addr domain.Address) context.Context {
		return auth.WithPrincipal(ctx, addr)
	}

	_, err := svc.Initialize(as(creator), port.InitializeReq{
		ID:              SeedCampaignID,
		Creator:         creator,
		Token:           SeedToken,
		Goal:            1_000_000,
		HardCap:         1_500_000,
		Deadline:        now.Add(30 * 24 * time.Hour).Unix(),
		MinContribution: 1_000,
		Platform:        &domain.PlatformConfig{Address: "demo-platform", FeeBps: 250},
		Metadata: domain.Metadata{
			Title:       "Solar kiosk for the village market",
			Description: "A solar powered charging kiosk run by the market cooperative.",
			SocialLinks: "https://example.org/solar-kiosk",
			Category:    "energy",
			Tags:        []string{"solar", "community"},
		},
	})
	if errors.Is(err, domain.ErrAlreadyInitialized) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("initialize demo campaign: %w", err)
	}

	for _, tier := range []domain.RewardTier{
		{Name: "Bronze", MinAmount: 10_000},
		{Name: "Silver", MinAmount: 100_000},
		{Name: "Gold", MinAmount: 500_000},
	} {
		if err = svc.AddRewardTier(as(creator), SeedCampaignID, tier.Name, tier.MinAmount); err != nil {
			return fmt.Errorf("add tier %s: %w", tier.Name, err)
		}
	}
	if err = svc.AddStretchGoal(as(creator), SeedCampaignID, 1_250_000); err != nil {
		return fmt.Errorf("add stretch goal: %w", err)
	}
	roadmap := []struct {
		after time.Duration
		what  string
	}{
		{45 * 24 * time.Hour, "Order panels and batteries"},
		{90 * 24 * time.Hour, "Kiosk opens at the market"},
	}
	for _, item := range roadmap {
		if err = svc.AddRoadmapItem(as(creator), SeedCampaignID, now.Add(item.after).Unix(), item.what); err != nil {
			return fmt.Errorf("add roadmap item: %w", err)
		}
	}

	backers := []struct {
		who      domain.Address
		amount   domain.Amount
		referral domain.Address
	}{
		{alice, 600_000, ""},
		{bob, 150_000, alice},
		{carol, 20_000, alice},
	}
	for _, b := range backers {
		if err = mint(ctx, SeedToken, b.who, b.amount); err != nil {
			return fmt.Errorf("fund %s: %w", b.who, err)
		}
		_, err = svc.Contribute(as(b.who), port.ContributeReq{
			CampaignID:  SeedCampaignID,
			Contributor: b.who,
			Amount:      b.amount,
			Referral:    b.referral,
		})
		if err != nil {
			return fmt.Errorf("contribute %s: %w", b.who, err)
		}
	}

	if err = svc.Pledge(as(carol), port.PledgeReq{CampaignID: SeedCampaignID, Pledger: carol, Amount: 100_000}); err != nil {
		return fmt.Errorf("pledge: %w", err)
	}
	return nil
}
