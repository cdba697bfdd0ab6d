package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-escrow/internal/config/configs"
	"crowdfund-escrow/internal/core/domain"
	"crowdfund-escrow/internal/db"
)

const deadline int64 = 1_900_000_000

func openTestRepo(t *testing.T) *CampaignRepository {
	t.Helper()
	sqlDB, err := db.OpenSQLite(context.Background(), configs.SQLite{Path: filepath.Join(t.TempDir(), "ledger.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewCampaignRepository(sqlDB)
}

func newLedger(t *testing.T, id string) *domain.Ledger {
	t.Helper()
	l, err := domain.NewLedger(domain.InitParams{
		ID:              id,
		Creator:         "creator",
		Token:           "token",
		Goal:            1_000,
		HardCap:         5_000,
		Deadline:        deadline,
		MinContribution: 10,
		Platform:        &domain.PlatformConfig{Address: "platform", FeeBps: 100},
		Metadata:        domain.Metadata{Title: "Kiosk", Tags: []string{"energy"}},
	}, time.Now())
	require.NoError(t, err)
	return l
}

func accept(domain.Transfer) error { return nil }

func TestCreateAndGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newLedger(t, "c1")))
	err := repo.Create(ctx, newLedger(t, "c1"))
	require.ErrorIs(t, err, domain.ErrAlreadyInitialized)

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Campaign.Status)
	assert.Equal(t, domain.Address("creator"), got.Campaign.Admin)
	require.NotNil(t, got.Campaign.Platform)
	assert.Equal(t, uint32(100), got.Campaign.Platform.FeeBps)
	assert.Equal(t, []string{"energy"}, got.Campaign.Metadata.Tags)
	assert.Equal(t, domain.InitialVersion, got.Campaign.Version)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdatePersistsLedger(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newLedger(t, "c1")))

	now := deadline - 100
	err := repo.Update(ctx, "c1", func(l *domain.Ledger) error {
		for _, a := range []domain.Address{"bob", "alice", "carol"} {
			if _, err := l.Contribute(now, domain.ContributionRequest{Contributor: a, Amount: 100, Referral: "dave"}, accept); err != nil {
				return err
			}
		}
		if err := l.Pledge(now, "erin", 50); err != nil {
			return err
		}
		if _, err := l.AddToWhitelist([]domain.Address{"bob", "alice", "carol"}); err != nil {
			return err
		}
		if err := l.AddRewardTier("Bronze", 100); err != nil {
			return err
		}
		if err := l.AddStretchGoal(2_000); err != nil {
			return err
		}
		return l.AddRoadmapItem(now, deadline+10, "ship")
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(300), got.Campaign.TotalRaised)
	assert.Equal(t, domain.Amount(50), got.Campaign.TotalPledged)
	assert.Equal(t, []domain.Address{"bob", "alice", "carol"}, got.Contributors.Items())
	assert.Equal(t, []domain.Address{"erin"}, got.Pledgers.Items())
	assert.Equal(t, []domain.Address{"bob", "alice", "carol"}, got.Whitelist.Items())
	assert.Equal(t, domain.Amount(300), got.ReferralTotalOf("dave"))
	assert.Equal(t, domain.Amount(50), got.PledgeOf("erin"))
	require.NotNil(t, got.AccountOf("alice").LastContributionAt)
	assert.Equal(t, now, *got.AccountOf("alice").LastContributionAt)
	assert.Equal(t, []domain.RewardTier{{Name: "Bronze", MinAmount: 100}}, got.RewardTiers)
	assert.Equal(t, []domain.Amount{2_000}, got.StretchGoals)
	require.Len(t, got.Roadmap, 1)

	// a pull-based refund drops the address but keeps the order of the rest
	err = repo.Update(ctx, "c1", func(l *domain.Ledger) error {
		return l.WithdrawContribution(now, "bob", 100, accept)
	})
	require.NoError(t, err)
	got, err = repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Address{"alice", "carol"}, got.Contributors.Items())
	assert.Zero(t, got.ContributionOf("bob"))
}

func TestUpdateRollsBackOnError(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newLedger(t, "c1")))

	boom := errors.New("boom")
	err := repo.Update(ctx, "c1", func(l *domain.Ledger) error {
		l.SetPaused(true)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, got.Campaign.Paused)

	err = repo.Update(ctx, "missing", func(*domain.Ledger) error { return nil })
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	for i := range 3 {
		require.NoError(t, repo.Create(ctx, newLedger(t, fmt.Sprintf("c%d", i))))
	}
	ids, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, ids, 2)

	ids, _, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
