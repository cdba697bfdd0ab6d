package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	creator  = Address("creator")
	platform = Address("platform")
	token    = Address("token")
	alice    = Address("alice")
	bob      = Address("bob")
	carol    = Address("carol")

	start    int64 = 1_700_000_000
	deadline       = start + 3600
)

// bank is a tiny asset ledger that rejects overdrafts.
type bank struct {
	balances  map[Address]Amount
	transfers []Transfer
	fail      map[Address]error
}

func newBank(funded ...Address) *bank {
	b := &bank{balances: map[Address]Amount{}, fail: map[Address]error{}}
	for _, a := range funded {
		b.balances[a] = 10_000_000
	}
	return b
}

func (b *bank) pay(t Transfer) error {
	if err, ok := b.fail[t.From]; ok {
		return err
	}
	if b.balances[t.From] < t.Amount {
		return errors.New("insufficient funds")
	}
	b.balances[t.From] -= t.Amount
	b.balances[t.To] += t.Amount
	b.transfers = append(b.transfers, t)
	return nil
}

func newTestLedger(t *testing.T, mutate ...func(*InitParams)) *Ledger {
	t.Helper()
	p := InitParams{
		ID:              "c1",
		Creator:         creator,
		Token:           token,
		Goal:            1_000_000,
		Deadline:        deadline,
		MinContribution: 1_000,
	}
	for _, m := range mutate {
		m(&p)
	}
	l, err := NewLedger(p, time.Unix(start, 0))
	require.NoError(t, err)
	l.DrainEvents()
	return l
}

func TestNewLedgerValidation(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*InitParams)
		code Code
	}{
		{"zero goal", func(p *InitParams) { p.Goal = 0 }, CodeInvalidAmount},
		{"hard cap below goal", func(p *InitParams) { p.HardCap = 10 }, CodeInvalidHardCap},
		{"negative hard cap", func(p *InitParams) { p.HardCap = -1 }, CodeInvalidHardCap},
		{"negative minimum", func(p *InitParams) { p.MinContribution = -1 }, CodeInvalidAmount},
		{"missing creator", func(p *InitParams) { p.Creator = "" }, CodeInvalidArgument},
		{"fee above 100%", func(p *InitParams) { p.Platform = &PlatformConfig{Address: platform, FeeBps: 10_001} }, CodeInvalidLimit},
		{"platform without address", func(p *InitParams) { p.Platform = &PlatformConfig{FeeBps: 10} }, CodeInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := InitParams{ID: "c1", Creator: creator, Token: token, Goal: 100, Deadline: deadline}
			tc.mut(&p)
			_, err := NewLedger(p, time.Unix(start, 0))
			require.Error(t, err)
			assert.Equal(t, tc.code, CodeOf(err))
		})
	}

	l := newTestLedger(t)
	assert.Equal(t, StatusActive, l.Campaign.Status)
	assert.Equal(t, creator, l.Campaign.Admin)
	assert.Equal(t, InitialVersion, l.Campaign.Version)
}

func TestSuccessfulCampaignWithdraw(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice, bob)

	_, err := l.Contribute(start+10, ContributionRequest{Contributor: alice, Amount: 600_000}, b.pay)
	require.NoError(t, err)
	_, err = l.Contribute(start+20, ContributionRequest{Contributor: bob, Amount: 400_000}, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(1_000_000), b.balances[l.Escrow()])

	_, err = l.Withdraw(deadline, b.pay)
	require.ErrorIs(t, err, ErrCampaignStillActive)

	out, err := l.Withdraw(deadline+1, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(1_000_000), out.CreatorAmount)
	assert.Equal(t, Amount(1_000_000), b.balances[creator])
	assert.Zero(t, b.balances[l.Escrow()])
	assert.Equal(t, StatusSuccessful, l.Campaign.Status)
	assert.Zero(t, l.Campaign.TotalRaised)

	_, err = l.Withdraw(deadline+2, b.pay)
	require.ErrorIs(t, err, ErrNotActive)
	_, err = l.Refund(deadline+2, b.pay)
	require.ErrorIs(t, err, ErrNotActive)
}

func TestFailedCampaignRefund(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice, bob)
	_, err := l.Contribute(start+1, ContributionRequest{Contributor: alice, Amount: 300_000}, b.pay)
	require.NoError(t, err)
	_, err = l.Contribute(start+2, ContributionRequest{Contributor: bob, Amount: 200_000}, b.pay)
	require.NoError(t, err)

	_, err = l.Withdraw(deadline+1, b.pay)
	require.ErrorIs(t, err, ErrGoalNotReached)

	refunded, err := l.Refund(deadline+1, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(500_000), refunded)
	assert.Equal(t, Amount(10_000_000), b.balances[alice])
	assert.Equal(t, Amount(10_000_000), b.balances[bob])
	assert.Zero(t, b.balances[l.Escrow()])
	assert.Equal(t, StatusRefunded, l.Campaign.Status)
	assert.Zero(t, l.ContributionOf(alice))

	_, err = l.Refund(deadline+2, b.pay)
	require.ErrorIs(t, err, ErrNotActive)
}

func TestRefundRejectedWhenGoalReached(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice)
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 1_000_000}, b.pay)
	require.NoError(t, err)
	_, err = l.Refund(deadline+1, b.pay)
	require.ErrorIs(t, err, ErrGoalReached)
	_, err = l.Refund(deadline, b.pay)
	require.ErrorIs(t, err, ErrCampaignStillActive)
}

func TestContributeGates(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice)

	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 999}, b.pay)
	require.ErrorIs(t, err, ErrBelowMinimum)
	assert.True(t, CodeOf(err).Fatal())

	_, err = l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 0}, b.pay)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = l.Contribute(deadline+1, ContributionRequest{Contributor: alice, Amount: 1_000}, b.pay)
	require.ErrorIs(t, err, ErrCampaignEnded)
	assert.False(t, CodeOf(err).Fatal())

	// contributing exactly at the deadline is allowed
	_, err = l.Contribute(deadline, ContributionRequest{Contributor: alice, Amount: 1_000}, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(1_000), l.Campaign.TotalRaised)
	assert.Equal(t, 1, l.Contributors.Len())
}

func TestContributeTransferFailureLeavesStateUntouched(t *testing.T) {
	l := newTestLedger(t)
	b := newBank()
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 5_000}, b.pay)
	require.ErrorIs(t, err, ErrTransferFailed)
	assert.Zero(t, l.Campaign.TotalRaised)
	assert.Zero(t, l.ContributionOf(alice))
	assert.False(t, l.Contributors.Contains(alice))
	assert.Empty(t, l.DrainEvents())
}

func TestHardCapClamp(t *testing.T) {
	l := newTestLedger(t, func(p *InitParams) { p.HardCap = 1_500_000 })
	b := newBank(alice, bob, carol)

	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 1_200_000}, b.pay)
	require.NoError(t, err)

	r, err := l.Contribute(start+1, ContributionRequest{Contributor: bob, Amount: 500_000}, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(300_000), r.Accepted)
	assert.True(t, r.HardCapReached)
	assert.Equal(t, Amount(1_500_000), l.Campaign.TotalRaised)
	assert.Equal(t, Amount(10_000_000-300_000), b.balances[bob])

	var kinds []EventKind
	for _, ev := range l.DrainEvents() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Contains(t, kinds, EventHardCapReached)

	_, err = l.Contribute(start+2, ContributionRequest{Contributor: carol, Amount: 1_000}, b.pay)
	require.ErrorIs(t, err, ErrHardCapExceeded)
}

func TestRateLimit(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice)
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 1_000}, b.pay)
	require.NoError(t, err)
	_, err = l.Contribute(start+4, ContributionRequest{Contributor: alice, Amount: 1_000}, b.pay)
	require.ErrorIs(t, err, ErrRateLimitExceeded)
	_, err = l.Contribute(start+5, ContributionRequest{Contributor: alice, Amount: 1_000}, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(2_000), l.ContributionOf(alice))
}

func TestPauseBlocksContributeWithdrawRefund(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice)
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 1_000_000}, b.pay)
	require.NoError(t, err)

	l.SetPaused(true)
	_, err = l.Contribute(start+10, ContributionRequest{Contributor: alice, Amount: 1_000}, b.pay)
	require.ErrorIs(t, err, ErrContractPaused)
	_, err = l.Withdraw(deadline+1, b.pay)
	require.ErrorIs(t, err, ErrContractPaused)

	l.SetPaused(false)
	_, err = l.Withdraw(deadline+1, b.pay)
	require.NoError(t, err)
}

func TestWhitelist(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice, bob)

	_, err := l.AddToWhitelist(nil)
	require.ErrorIs(t, err, ErrInvalidLimit)
	_, err = l.AddToWhitelist(make([]Address, MaxWhitelistBatch+1))
	require.ErrorIs(t, err, ErrInvalidLimit)

	added, err := l.AddToWhitelist([]Address{alice, alice})
	require.NoError(t, err)
	assert.Equal(t, []Address{alice}, added)
	added, err = l.AddToWhitelist([]Address{alice})
	require.NoError(t, err)
	assert.Empty(t, added)

	_, err = l.Contribute(start, ContributionRequest{Contributor: bob, Amount: 1_000}, b.pay)
	require.ErrorIs(t, err, ErrNotWhitelisted)
	_, err = l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 1_000}, b.pay)
	require.NoError(t, err)
}

func TestReferralTally(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice, bob)
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 2_000, Referral: carol}, b.pay)
	require.NoError(t, err)
	_, err = l.Contribute(start, ContributionRequest{Contributor: bob, Amount: 3_000, Referral: carol}, b.pay)
	require.NoError(t, err)
	_, err = l.Contribute(start+5, ContributionRequest{Contributor: alice, Amount: 1_000, Referral: alice}, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(5_000), l.ReferralTotalOf(carol))
	assert.Zero(t, l.ReferralTotalOf(alice))
}

func TestOverflowIsReported(t *testing.T) {
	l := newTestLedger(t, func(p *InitParams) { p.MinContribution = 0 })
	l.Campaign.TotalRaised = MaxAmount - 10
	b := newBank()
	b.balances[alice] = MaxAmount
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 11}, b.pay)
	require.ErrorIs(t, err, ErrOverflow)
	assert.Empty(t, b.transfers)
}

func TestWithdrawWithPlatformFee(t *testing.T) {
	l := newTestLedger(t, func(p *InitParams) {
		p.Platform = &PlatformConfig{Address: platform, FeeBps: 250}
	})
	b := newBank(alice)
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 1_000_003}, b.pay)
	require.NoError(t, err)

	out, err := l.Withdraw(deadline+1, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(25_000), out.Fee)
	assert.Equal(t, Amount(975_003), out.CreatorAmount)
	assert.Equal(t, out.Fee, b.balances[platform])
	assert.Equal(t, out.CreatorAmount, b.balances[creator])
	assert.Zero(t, b.balances[l.Escrow()])
}

func TestWithdrawTransferFailureReportsError(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice)
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 1_000_000}, b.pay)
	require.NoError(t, err)
	b.fail[l.Escrow()] = errors.New("asset service down")
	_, err = l.Withdraw(deadline+1, b.pay)
	require.ErrorIs(t, err, ErrTransferFailed)
}

func TestCancelRefundsEveryone(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice, bob)
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 700_000}, b.pay)
	require.NoError(t, err)
	_, err = l.Contribute(start, ContributionRequest{Contributor: bob, Amount: 400_000}, b.pay)
	require.NoError(t, err)

	refunded, err := l.Cancel(b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(1_100_000), refunded)
	assert.Equal(t, StatusCancelled, l.Campaign.Status)
	assert.Zero(t, b.balances[l.Escrow()])

	_, err = l.Cancel(b.pay)
	require.ErrorIs(t, err, ErrNotActive)
}

func TestRefundSingleIsIdempotent(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice, bob)
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 300_000}, b.pay)
	require.NoError(t, err)
	_, err = l.Contribute(start, ContributionRequest{Contributor: bob, Amount: 200_000}, b.pay)
	require.NoError(t, err)

	_, err = l.RefundSingle(deadline, alice, b.pay)
	require.ErrorIs(t, err, ErrCampaignStillActive)

	got, err := l.RefundSingle(deadline+1, alice, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(300_000), got)
	assert.False(t, l.Contributors.Contains(alice))
	assert.Equal(t, Amount(200_000), l.Campaign.TotalRaised)
	assert.Equal(t, StatusActive, l.Campaign.Status)

	got, err = l.RefundSingle(deadline+2, alice, b.pay)
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.Equal(t, Amount(10_000_000), b.balances[alice])

	refunded, err := l.Refund(deadline+3, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(200_000), refunded)
	assert.Zero(t, b.balances[l.Escrow()])
}

func TestWithdrawContribution(t *testing.T) {
	l := newTestLedger(t)
	b := newBank(alice)
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 5_000}, b.pay)
	require.NoError(t, err)

	err = l.WithdrawContribution(start+1, alice, 6_000, b.pay)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, l.WithdrawContribution(start+1, alice, 2_000, b.pay))
	assert.Equal(t, Amount(3_000), l.ContributionOf(alice))
	assert.True(t, l.Contributors.Contains(alice))

	require.NoError(t, l.WithdrawContribution(start+2, alice, 3_000, b.pay))
	assert.False(t, l.Contributors.Contains(alice))
	assert.Zero(t, l.Campaign.TotalRaised)
	assert.Zero(t, b.balances[l.Escrow()])

	err = l.WithdrawContribution(deadline+1, alice, 1, b.pay)
	require.ErrorIs(t, err, ErrCampaignEnded)
}

func TestPledgesAndCollection(t *testing.T) {
	l := newTestLedger(t, func(p *InitParams) { p.HardCap = 1_000_000 })
	b := newBank(alice, bob, carol)

	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 400_000}, b.pay)
	require.NoError(t, err)
	require.NoError(t, l.Pledge(start, bob, 500_000))
	require.NoError(t, l.Pledge(start, carol, 900_000))
	assert.Equal(t, Amount(1_400_000), l.Campaign.TotalPledged)
	assert.Equal(t, Amount(10_000_000), b.balances[bob], "pledges are not transferred")

	_, err = l.CollectPledges(deadline, b.pay)
	require.ErrorIs(t, err, ErrCampaignStillActive)

	b.fail[carol] = errors.New("frozen account")
	res, err := l.CollectPledges(deadline+1, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(500_000), res.Collected)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, carol, res.Failed[0].Pledger)

	assert.Equal(t, Amount(900_000), l.Campaign.TotalRaised)
	assert.Equal(t, Amount(900_000), l.Campaign.TotalPledged)
	assert.Equal(t, Amount(900_000), l.PledgeOf(carol))
	assert.Zero(t, l.PledgeOf(bob))
	assert.Equal(t, Amount(500_000), l.ContributionOf(bob))
	assert.Equal(t, b.balances[l.Escrow()], l.Campaign.TotalRaised)
}

func TestCollectPledgesNeedsGoal(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Pledge(start, bob, 10_000))
	_, err := l.CollectPledges(deadline+1, newBank(bob).pay)
	require.ErrorIs(t, err, ErrGoalNotReached)
}

func TestConservationAcrossOperations(t *testing.T) {
	l := newTestLedger(t, func(p *InitParams) { p.MinContribution = 1 })
	b := newBank(alice, bob, carol)
	now := start
	for i, a := range []Address{alice, bob, carol, alice, bob} {
		now += ContributionCooldown
		_, err := l.Contribute(now, ContributionRequest{Contributor: a, Amount: Amount(10_000 * (i + 1))}, b.pay)
		require.NoError(t, err)
	}
	require.NoError(t, l.WithdrawContribution(now, bob, 7_000, b.pay))

	var sum Amount
	for _, a := range l.Contributors.Items() {
		sum += l.ContributionOf(a)
	}
	assert.Equal(t, l.Campaign.TotalRaised, sum)
	assert.Equal(t, l.Campaign.TotalRaised, b.balances[l.Escrow()])
}

func TestEscrowAccountsCannotTransact(t *testing.T) {
	escrow := EscrowAddress("c1")
	other := EscrowAddress("c2")

	for name, mut := range map[string]func(*InitParams){
		"creator":  func(p *InitParams) { p.Creator = escrow },
		"admin":    func(p *InitParams) { p.Admin = other },
		"platform": func(p *InitParams) { p.Platform = &PlatformConfig{Address: escrow, FeeBps: 100} },
	} {
		t.Run(name, func(t *testing.T) {
			p := InitParams{ID: "c1", Creator: creator, Token: token, Goal: 100, Deadline: deadline}
			mut(&p)
			_, err := NewLedger(p, time.Unix(start, 0))
			assert.Equal(t, CodeInvalidArgument, CodeOf(err))
		})
	}

	l := newTestLedger(t)
	b := newBank(alice, escrow, other)

	for _, who := range []Address{escrow, other} {
		_, err := l.Contribute(start, ContributionRequest{Contributor: who, Amount: 1_500_000}, b.pay)
		assert.Equal(t, CodeInvalidArgument, CodeOf(err), who)
		assert.Equal(t, CodeInvalidArgument, CodeOf(l.Pledge(start, who, 5_000)), who)
	}
	_, err := l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 5_000, Referral: escrow}, b.pay)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
	assert.Empty(t, b.transfers)
	assert.Zero(t, l.Campaign.TotalRaised)
	assert.Zero(t, l.Campaign.TotalPledged)
	assert.Zero(t, l.Pledgers.Len())

	_, err = l.Contribute(start, ContributionRequest{Contributor: alice, Amount: 500_000}, b.pay)
	require.NoError(t, err)
	assert.Equal(t, CodeInvalidArgument, CodeOf(l.WithdrawContribution(start+10, escrow, 1_000, b.pay)))

	_, err = l.RefundSingle(deadline+1, escrow, b.pay)
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))

	refunded, err := l.Refund(deadline+1, b.pay)
	require.NoError(t, err)
	assert.Equal(t, Amount(500_000), refunded)
	assert.Equal(t, Amount(10_000_000), b.balances[alice])
	assert.Equal(t, Amount(10_000_000), b.balances[escrow])
}
