package domain

// Payout describes the split of a successful withdrawal.
type Payout struct {
	Total         Amount `json:"total"`
	Fee           Amount `json:"fee"`
	CreatorAmount Amount `json:"creator_amount"`
}

// PledgeFailure is a pledger whose collection transfer failed. Its pledge
// stays outstanding.
type PledgeFailure struct {
	Pledger Address
	Amount  Amount
	Err     error
}

// PledgeCollection summarizes a collect_pledges run.
type PledgeCollection struct {
	Collected  Amount
	Collectors []Address
	Failed     []PledgeFailure
}

// Withdraw releases the escrow to the creator, minus the platform fee,
// and moves the campaign to StatusSuccessful.
func (l *Ledger) Withdraw(now int64, fn TransferFunc) (Payout, error) {
	c := &l.Campaign
	if err := l.requireActive(); err != nil {
		return Payout{}, err
	}
	if !l.DeadlinePassed(now) {
		return Payout{}, ErrCampaignStillActive
	}
	if !l.GoalMet() {
		return Payout{}, ErrGoalNotReached
	}
	if c.Paused {
		return Payout{}, ErrContractPaused
	}

	out := Payout{Total: c.TotalRaised}
	if c.Platform != nil && c.Platform.FeeBps > 0 {
		fee, err := MulDiv(out.Total, int64(c.Platform.FeeBps), MaxFeeBps)
		if err != nil {
			return Payout{}, err
		}
		out.Fee = fee
	}
	rest, err := out.Total.Sub(out.Fee)
	if err != nil {
		return Payout{}, err
	}
	out.CreatorAmount = rest

	c.TotalRaised = 0
	c.Status = StatusSuccessful

	if out.Fee > 0 {
		if err = pay(fn, Transfer{From: l.Escrow(), To: c.Platform.Address, Amount: out.Fee}); err != nil {
			return Payout{}, err
		}
		l.emit(EventFeeTransferred, c.Platform.Address, out.Fee, nil)
	}
	if err = pay(fn, Transfer{From: l.Escrow(), To: c.Creator, Amount: out.CreatorAmount}); err != nil {
		return Payout{}, err
	}
	l.emit(EventWithdrawn, c.Creator, out.CreatorAmount, nil)
	return out, nil
}

// CollectPledges pulls every outstanding pledge into escrow once the
// combined raise reached the goal. A pledger whose transfer fails is
// skipped and reported; the others are still collected.
func (l *Ledger) CollectPledges(now int64, fn TransferFunc) (PledgeCollection, error) {
	c := &l.Campaign
	if err := l.requireActive(); err != nil {
		return PledgeCollection{}, err
	}
	if !l.DeadlinePassed(now) {
		return PledgeCollection{}, ErrCampaignStillActive
	}
	combined, err := c.TotalRaised.Add(c.TotalPledged)
	if err != nil {
		return PledgeCollection{}, err
	}
	if combined < c.Goal {
		return PledgeCollection{}, ErrGoalNotReached
	}

	var res PledgeCollection
	for _, pledger := range l.Pledgers.Items() {
		acc := l.account(pledger)
		amount := acc.Pledge
		if amount == 0 {
			continue
		}
		contribution, err := acc.Contribution.Add(amount)
		if err != nil {
			return PledgeCollection{}, err
		}
		total, err := c.TotalRaised.Add(amount)
		if err != nil {
			return PledgeCollection{}, err
		}
		pledged, err := c.TotalPledged.Sub(amount)
		if err != nil {
			return PledgeCollection{}, err
		}
		if err = pay(fn, Transfer{From: pledger, To: l.Escrow(), Amount: amount}); err != nil {
			res.Failed = append(res.Failed, PledgeFailure{Pledger: pledger, Amount: amount, Err: err})
			l.emit(EventPledgeCollectFailed, pledger, amount, map[string]string{"error": err.Error()})
			continue
		}
		acc.Pledge = 0
		acc.Contribution = contribution
		c.TotalRaised = total
		c.TotalPledged = pledged
		l.Pledgers.Remove(pledger)
		l.Contributors.Add(pledger)
		res.Collected += amount
		res.Collectors = append(res.Collectors, pledger)
		l.emit(EventPledgeCollected, pledger, amount, nil)
	}
	return res, nil
}

// Refund returns every contribution after a failed campaign and moves it
// to StatusRefunded.
func (l *Ledger) Refund(now int64, fn TransferFunc) (Amount, error) {
	if err := l.requireActive(); err != nil {
		return 0, err
	}
	if !l.DeadlinePassed(now) {
		return 0, ErrCampaignStillActive
	}
	if l.GoalMet() {
		return 0, ErrGoalReached
	}
	if l.Campaign.Paused {
		return 0, ErrContractPaused
	}
	l.Campaign.Status = StatusRefunded
	refunded, err := l.sweep(fn)
	if err != nil {
		return 0, err
	}
	l.emit(EventRefunded, "", refunded, nil)
	return refunded, nil
}

// RefundSingle lets one contributor pull their refund after a failed
// campaign. A zero balance is a successful no-op, so repeated calls are
// harmless. The status does not change.
func (l *Ledger) RefundSingle(now int64, contributor Address, fn TransferFunc) (Amount, error) {
	c := &l.Campaign
	if err := l.requireActive(); err != nil {
		return 0, err
	}
	if c.Paused {
		return 0, ErrContractPaused
	}
	if !l.DeadlinePassed(now) {
		return 0, ErrCampaignStillActive
	}
	if l.GoalMet() {
		return 0, ErrGoalReached
	}
	if err := checkParty(contributor, "contributor"); err != nil {
		return 0, err
	}
	acc, ok := l.Accounts[contributor]
	if !ok || acc.Contribution == 0 {
		return 0, nil
	}
	amount := acc.Contribution
	total, err := c.TotalRaised.Sub(amount)
	if err != nil {
		return 0, err
	}
	acc.Contribution = 0
	c.TotalRaised = total
	l.Contributors.Remove(contributor)
	if err = pay(fn, Transfer{From: l.Escrow(), To: contributor, Amount: amount}); err != nil {
		return 0, err
	}
	l.emit(EventContributorRefunded, contributor, amount, nil)
	return amount, nil
}

// Cancel refunds every contributor regardless of the goal and moves the
// campaign to StatusCancelled.
func (l *Ledger) Cancel(fn TransferFunc) (Amount, error) {
	if err := l.requireActive(); err != nil {
		return 0, err
	}
	l.Campaign.Status = StatusCancelled
	refunded, err := l.sweep(fn)
	if err != nil {
		return 0, err
	}
	l.emit(EventCancelled, l.Campaign.Creator, refunded, nil)
	return refunded, nil
}

// sweep zeroes and repays every contribution in contributor order.
func (l *Ledger) sweep(fn TransferFunc) (Amount, error) {
	var refunded Amount
	for _, addr := range l.Contributors.Items() {
		acc := l.account(addr)
		amount := acc.Contribution
		if amount == 0 {
			continue
		}
		acc.Contribution = 0
		next, err := refunded.Add(amount)
		if err != nil {
			return 0, err
		}
		refunded = next
		if err = pay(fn, Transfer{From: l.Escrow(), To: addr, Amount: amount}); err != nil {
			return 0, err
		}
		l.emit(EventContributorRefunded, addr, amount, nil)
	}
	l.Campaign.TotalRaised = 0
	return refunded, nil
}
