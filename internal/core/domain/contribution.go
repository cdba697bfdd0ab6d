package domain

import "strconv"

// ContributionRequest carries the arguments of contribute.
type ContributionRequest struct {
	Contributor Address
	Amount      Amount
	Referral    Address
}

// ContributionReceipt reports what was actually accepted. Accepted is
// lower than Requested when the hard cap clamped the contribution.
type ContributionReceipt struct {
	Requested      Amount `json:"requested"`
	Accepted       Amount `json:"accepted"`
	TotalRaised    Amount `json:"total_raised"`
	HardCapReached bool   `json:"hard_cap_reached"`
}

// Contribute moves funds from the contributor into escrow. Counters are
// updated only after the transfer succeeded.
func (l *Ledger) Contribute(now int64, req ContributionRequest, fn TransferFunc) (ContributionReceipt, error) {
	c := &l.Campaign
	if acc, ok := l.Accounts[req.Contributor]; ok && acc.LastContributionAt != nil {
		if now < *acc.LastContributionAt+ContributionCooldown {
			return ContributionReceipt{}, ErrRateLimitExceeded
		}
	}
	if c.Paused {
		return ContributionReceipt{}, ErrContractPaused
	}
	if err := l.requireActive(); err != nil {
		return ContributionReceipt{}, err
	}
	if err := checkParty(req.Contributor, "contributor"); err != nil {
		return ContributionReceipt{}, err
	}
	if req.Referral.IsEscrow() {
		return ContributionReceipt{}, Newf(CodeInvalidArgument, "referral must not be an escrow account")
	}
	if l.Whitelist.Len() > 0 && !l.Whitelist.Contains(req.Contributor) {
		return ContributionReceipt{}, ErrNotWhitelisted
	}
	if req.Amount <= 0 {
		return ContributionReceipt{}, ErrInvalidAmount
	}
	if req.Amount < c.MinContribution {
		return ContributionReceipt{}, ErrBelowMinimum
	}
	if l.DeadlinePassed(now) {
		return ContributionReceipt{}, ErrCampaignEnded
	}

	accepted := req.Amount
	if c.HardCap > 0 {
		if c.TotalRaised >= c.HardCap {
			return ContributionReceipt{}, ErrHardCapExceeded
		}
		if headroom := c.HardCap - c.TotalRaised; accepted > headroom {
			accepted = headroom
		}
	}

	acc := l.account(req.Contributor)
	contribution, err := acc.Contribution.Add(accepted)
	if err != nil {
		return ContributionReceipt{}, err
	}
	total, err := c.TotalRaised.Add(accepted)
	if err != nil {
		return ContributionReceipt{}, err
	}
	referral := req.Referral
	credited := !referral.IsZero() && referral != req.Contributor
	var referralTotal Amount
	if credited {
		if referralTotal, err = l.AccountOf(referral).ReferralTotal.Add(accepted); err != nil {
			return ContributionReceipt{}, err
		}
	}

	if err = pay(fn, Transfer{From: req.Contributor, To: l.Escrow(), Amount: accepted}); err != nil {
		return ContributionReceipt{}, err
	}

	acc.Contribution = contribution
	c.TotalRaised = total
	l.Contributors.Add(req.Contributor)
	ts := now
	acc.LastContributionAt = &ts
	l.emit(EventContributed, req.Contributor, accepted, nil)
	if credited {
		l.account(referral).ReferralTotal = referralTotal
		l.emit(EventReferralCredited, referral, accepted, map[string]string{"contributor": req.Contributor.String()})
	}

	receipt := ContributionReceipt{Requested: req.Amount, Accepted: accepted, TotalRaised: c.TotalRaised}
	if c.HardCap > 0 && c.TotalRaised == c.HardCap {
		receipt.HardCapReached = true
		l.emit(EventHardCapReached, req.Contributor, c.TotalRaised, nil)
	}
	return receipt, nil
}

// Pledge records a promise to contribute once the campaign has succeeded.
// Nothing is transferred and the hard cap does not apply.
func (l *Ledger) Pledge(now int64, pledger Address, amount Amount) error {
	c := &l.Campaign
	if err := l.requireActive(); err != nil {
		return err
	}
	if err := checkParty(pledger, "pledger"); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount < c.MinContribution {
		return ErrBelowMinimum
	}
	if l.DeadlinePassed(now) {
		return ErrCampaignEnded
	}
	acc := l.account(pledger)
	pledge, err := acc.Pledge.Add(amount)
	if err != nil {
		return err
	}
	total, err := c.TotalPledged.Add(amount)
	if err != nil {
		return err
	}
	acc.Pledge = pledge
	c.TotalPledged = total
	l.Pledgers.Add(pledger)
	l.emit(EventPledged, pledger, amount, nil)
	return nil
}

// WithdrawContribution returns part or all of a contribution before the
// deadline. Counters are decremented before funds leave escrow.
func (l *Ledger) WithdrawContribution(now int64, contributor Address, amount Amount, fn TransferFunc) error {
	c := &l.Campaign
	if err := l.requireActive(); err != nil {
		return err
	}
	if c.Paused {
		return ErrContractPaused
	}
	if l.DeadlinePassed(now) {
		return ErrCampaignEnded
	}
	if err := checkParty(contributor, "contributor"); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	acc := l.account(contributor)
	if amount > acc.Contribution {
		return ErrInsufficientBalance.WithMetadata("balance", strconv.FormatInt(int64(acc.Contribution), 10))
	}
	remaining, err := acc.Contribution.Sub(amount)
	if err != nil {
		return err
	}
	total, err := c.TotalRaised.Sub(amount)
	if err != nil {
		return err
	}
	acc.Contribution = remaining
	c.TotalRaised = total
	if remaining == 0 {
		l.Contributors.Remove(contributor)
	}
	if err = pay(fn, Transfer{From: l.Escrow(), To: contributor, Amount: amount}); err != nil {
		return err
	}
	l.emit(EventContributionWithdrawn, contributor, amount, nil)
	return nil
}
