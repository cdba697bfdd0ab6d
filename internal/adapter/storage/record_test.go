package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-escrow/internal/core/domain"
)

func TestEncodeDecodeKeepsSetOrder(t *testing.T) {
	l, err := domain.NewLedger(domain.InitParams{
		ID: "c1", Creator: "creator", Token: "token", Goal: 100, Deadline: 1_000,
	}, time.Unix(0, 0))
	require.NoError(t, err)

	pay := func(domain.Transfer) error { return nil }
	for _, a := range []domain.Address{"zed", "amy", "max"} {
		_, err = l.Contribute(10, domain.ContributionRequest{Contributor: a, Amount: 5}, pay)
		require.NoError(t, err)
	}
	_, err = l.AddToWhitelist([]domain.Address{"whitelisted-only"})
	require.NoError(t, err)

	rec, accounts, err := Encode(l)
	require.NoError(t, err)
	require.Len(t, accounts, 4)
	assert.Equal(t, "amy", accounts[0].Address, "rows are sorted by address")
	assert.JSONEq(t, `[]`, string(rec.RewardTiers))

	got, err := Decode(rec, accounts)
	require.NoError(t, err)
	assert.Equal(t, []domain.Address{"zed", "amy", "max"}, got.Contributors.Items())
	assert.Equal(t, []domain.Address{"whitelisted-only"}, got.Whitelist.Items())
	assert.Equal(t, domain.Amount(15), got.Campaign.TotalRaised)
	assert.Equal(t, domain.Amount(5), got.ContributionOf("max"))
	assert.NotContains(t, got.Accounts, domain.Address("whitelisted-only"))
}

func TestDecodeRejectsUnknownStatus(t *testing.T) {
	_, err := Decode(CampaignRecord{ID: "c1", Status: "paused"}, nil)
	require.Error(t, err)
}
