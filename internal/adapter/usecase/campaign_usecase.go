package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"crowdfund-escrow/internal/core/domain"
	"crowdfund-escrow/internal/core/port"
)

var _ port.CampaignUseCase = (*CampaignUseCase)(nil)

// CampaignUseCase orchestrates the ledger aggregate, the ledger store and
// the external collaborators. Every mutating operation follows the same
// path: authorize, lock and load the ledger inside one store transaction,
// run the domain operation with a transfer function bound to the asset
// service, persist, commit and finally publish the drained events. When
// the transaction does not commit, transfers that already went through
// are reversed so the asset service and the ledger agree again.
type CampaignUseCase struct {
	repo   port.CampaignRepository
	assets port.AssetService
	clock  port.Clock
	auth   port.Authorizer
	events port.EventPublisher
	logger *slog.Logger
}

// NewCampaignUseCase wires the usecase. A nil publisher drops events and a
// nil logger falls back to slog.Default().
func NewCampaignUseCase(
	repo port.CampaignRepository,
	assets port.AssetService,
	clock port.Clock,
	auth port.Authorizer,
	events port.EventPublisher,
	logger *slog.Logger,
) *CampaignUseCase {
	if events == nil {
		events = discardPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CampaignUseCase{
		repo:   repo,
		assets: assets,
		clock:  clock,
		auth:   auth,
		events: events,
		logger: logger,
	}
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, ...domain.Event) {}

// Initialize creates a campaign on behalf of its creator.
func (u *CampaignUseCase) Initialize(ctx context.Context, req port.InitializeReq) (*port.CampaignView, error) {
	if err := u.auth.Authorize(ctx, req.Creator); err != nil {
		return nil, u.fail(ctx, "initialize", req.ID, err)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := u.clock.Now()
	l, err := domain.NewLedger(domain.InitParams{
		ID:              req.ID,
		Creator:         req.Creator,
		Admin:           req.Admin,
		Token:           req.Token,
		Goal:            req.Goal,
		HardCap:         req.HardCap,
		Deadline:        req.Deadline,
		MinContribution: req.MinContribution,
		Platform:        req.Platform,
		Metadata:        req.Metadata,
	}, now)
	if err != nil {
		return nil, u.fail(ctx, "initialize", req.ID, err)
	}
	events := l.DrainEvents()
	if err = u.repo.Create(ctx, l); err != nil {
		return nil, u.fail(ctx, "initialize", req.ID, err)
	}
	u.publish(ctx, now, events)
	u.logger.InfoContext(ctx, "campaign initialized",
		slog.String("campaign_id", req.ID),
		slog.String("creator", req.Creator.String()),
		slog.Int64("goal", int64(req.Goal)),
		slog.Int64("deadline", req.Deadline),
	)
	return port.NewCampaignView(l), nil
}

func (u *CampaignUseCase) Contribute(ctx context.Context, req port.ContributeReq) (*domain.ContributionReceipt, error) {
	if err := u.auth.Authorize(ctx, req.Contributor); err != nil {
		return nil, u.fail(ctx, "contribute", req.CampaignID, err)
	}
	var receipt domain.ContributionReceipt
	err := u.mutate(ctx, "contribute", req.CampaignID, func(l *domain.Ledger, now int64, pay domain.TransferFunc) error {
		var err error
		receipt, err = l.Contribute(now, domain.ContributionRequest{
			Contributor: req.Contributor,
			Amount:      req.Amount,
			Referral:    req.Referral,
		}, pay)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (u *CampaignUseCase) Pledge(ctx context.Context, req port.PledgeReq) error {
	if err := u.auth.Authorize(ctx, req.Pledger); err != nil {
		return u.fail(ctx, "pledge", req.CampaignID, err)
	}
	return u.mutate(ctx, "pledge", req.CampaignID, func(l *domain.Ledger, now int64, _ domain.TransferFunc) error {
		return l.Pledge(now, req.Pledger, req.Amount)
	})
}

// CollectPledges may be triggered by anyone once the deadline passed.
func (u *CampaignUseCase) CollectPledges(ctx context.Context, id string) (*port.CollectResp, error) {
	var res domain.PledgeCollection
	err := u.mutate(ctx, "collect_pledges", id, func(l *domain.Ledger, now int64, pay domain.TransferFunc) error {
		var err error
		res, err = l.CollectPledges(now, pay)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := &port.CollectResp{
		Collected:  res.Collected,
		Collectors: nonNil(res.Collectors),
		Failed:     make([]port.PledgeFailure, 0, len(res.Failed)),
	}
	for _, f := range res.Failed {
		resp.Failed = append(resp.Failed, port.PledgeFailure{Pledger: f.Pledger, Amount: f.Amount, Error: f.Err.Error()})
	}
	return resp, nil
}

func (u *CampaignUseCase) WithdrawContribution(ctx context.Context, req port.WithdrawContributionReq) error {
	if err := u.auth.Authorize(ctx, req.Contributor); err != nil {
		return u.fail(ctx, "withdraw_contribution", req.CampaignID, err)
	}
	return u.mutate(ctx, "withdraw_contribution", req.CampaignID, func(l *domain.Ledger, now int64, pay domain.TransferFunc) error {
		return l.WithdrawContribution(now, req.Contributor, req.Amount, pay)
	})
}

func (u *CampaignUseCase) Withdraw(ctx context.Context, id string) (*domain.Payout, error) {
	var payout domain.Payout
	err := u.mutate(ctx, "withdraw", id, func(l *domain.Ledger, now int64, pay domain.TransferFunc) error {
		if err := u.auth.Authorize(ctx, l.Campaign.Creator); err != nil {
			return err
		}
		var err error
		payout, err = l.Withdraw(now, pay)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// Refund may be triggered by anyone once a campaign failed.
func (u *CampaignUseCase) Refund(ctx context.Context, id string) (domain.Amount, error) {
	var refunded domain.Amount
	err := u.mutate(ctx, "refund", id, func(l *domain.Ledger, now int64, pay domain.TransferFunc) error {
		var err error
		refunded, err = l.Refund(now, pay)
		return err
	})
	return refunded, err
}

func (u *CampaignUseCase) RefundSingle(ctx context.Context, id string, contributor domain.Address) (domain.Amount, error) {
	if err := u.auth.Authorize(ctx, contributor); err != nil {
		return 0, u.fail(ctx, "refund_single", id, err)
	}
	var refunded domain.Amount
	err := u.mutate(ctx, "refund_single", id, func(l *domain.Ledger, now int64, pay domain.TransferFunc) error {
		var err error
		refunded, err = l.RefundSingle(now, contributor, pay)
		return err
	})
	return refunded, err
}

func (u *CampaignUseCase) Cancel(ctx context.Context, id string) (domain.Amount, error) {
	var refunded domain.Amount
	err := u.mutate(ctx, "cancel", id, func(l *domain.Ledger, _ int64, pay domain.TransferFunc) error {
		if err := u.auth.Authorize(ctx, l.Campaign.Creator); err != nil {
			return err
		}
		var err error
		refunded, err = l.Cancel(pay)
		return err
	})
	return refunded, err
}

func (u *CampaignUseCase) SetPaused(ctx context.Context, id string, paused bool) error {
	return u.asCreator(ctx, "set_paused", id, func(l *domain.Ledger, _ int64) error {
		l.SetPaused(paused)
		return nil
	})
}

func (u *CampaignUseCase) AddToWhitelist(ctx context.Context, id string, addrs []domain.Address) ([]domain.Address, error) {
	var added []domain.Address
	err := u.asCreator(ctx, "add_to_whitelist", id, func(l *domain.Ledger, _ int64) error {
		var err error
		added, err = l.AddToWhitelist(addrs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(added), nil
}

func (u *CampaignUseCase) AddRewardTier(ctx context.Context, id, name string, minAmount domain.Amount) error {
	return u.asCreator(ctx, "add_reward_tier", id, func(l *domain.Ledger, _ int64) error {
		return l.AddRewardTier(name, minAmount)
	})
}

func (u *CampaignUseCase) AddStretchGoal(ctx context.Context, id string, milestone domain.Amount) error {
	return u.asCreator(ctx, "add_stretch_goal", id, func(l *domain.Ledger, _ int64) error {
		return l.AddStretchGoal(milestone)
	})
}

func (u *CampaignUseCase) AddRoadmapItem(ctx context.Context, id string, date int64, description string) error {
	return u.asCreator(ctx, "add_roadmap_item", id, func(l *domain.Ledger, now int64) error {
		return l.AddRoadmapItem(now, date, description)
	})
}

func (u *CampaignUseCase) UpdateMetadata(ctx context.Context, id string, update domain.MetadataUpdate) error {
	return u.asCreator(ctx, "update_metadata", id, func(l *domain.Ledger, _ int64) error {
		return l.UpdateMetadata(update)
	})
}

func (u *CampaignUseCase) UpdateDeadline(ctx context.Context, id string, deadline int64) error {
	return u.asCreator(ctx, "update_deadline", id, func(l *domain.Ledger, _ int64) error {
		return l.UpdateDeadline(deadline)
	})
}

// Upgrade is the only operation gated on the admin instead of the creator.
func (u *CampaignUseCase) Upgrade(ctx context.Context, id, codeHash string) (uint32, error) {
	var version uint32
	err := u.mutate(ctx, "upgrade", id, func(l *domain.Ledger, _ int64, _ domain.TransferFunc) error {
		if err := u.auth.Authorize(ctx, l.Campaign.Admin); err != nil {
			return err
		}
		if err := l.Upgrade(codeHash); err != nil {
			return err
		}
		version = l.Campaign.Version
		return nil
	})
	return version, err
}

func (u *CampaignUseCase) GetCampaign(ctx context.Context, id string) (*port.CampaignView, error) {
	l, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return port.NewCampaignView(l), nil
}

func (u *CampaignUseCase) ListCampaigns(ctx context.Context, limit, offset int) (*port.CampaignList, error) {
	if limit < 1 || limit > port.MaxListLimit {
		return nil, domain.Newf(domain.CodeInvalidLimit, "limit must be between 1 and %d", port.MaxListLimit)
	}
	if offset < 0 {
		return nil, domain.Newf(domain.CodeInvalidArgument, "offset must not be negative")
	}
	ids, total, err := u.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &port.CampaignList{IDs: nonNil(ids), Total: total}, nil
}

// ReconcileEscrow compares the escrow balance held by the asset service
// with the raised total recorded in the ledger.
func (u *CampaignUseCase) ReconcileEscrow(ctx context.Context, id string) (*port.EscrowReconciliation, error) {
	l, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	escrow := l.Escrow()
	balance, err := u.assets.Balance(ctx, l.Campaign.Token, escrow)
	if err != nil {
		return nil, u.fail(ctx, "reconcile_escrow", id, domain.Wrap(domain.CodeTransferFailed, "escrow balance unavailable", err))
	}
	rec := &port.EscrowReconciliation{
		Escrow:      escrow,
		Token:       l.Campaign.Token,
		Balance:     balance,
		TotalRaised: l.Campaign.TotalRaised,
		Balanced:    balance == l.Campaign.TotalRaised,
	}
	if !rec.Balanced {
		u.logger.WarnContext(ctx, "escrow out of balance",
			slog.String("campaign_id", id),
			slog.Int64("balance", int64(balance)),
			slog.Int64("total_raised", int64(l.Campaign.TotalRaised)),
		)
	}
	return rec, nil
}

func (u *CampaignUseCase) GetStats(ctx context.Context, id string) (*domain.Stats, error) {
	l, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s := l.Stats()
	return &s, nil
}

func (u *CampaignUseCase) GetAccount(ctx context.Context, id string, addr domain.Address) (*port.AccountView, error) {
	l, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	acc := l.AccountOf(addr)
	v := &port.AccountView{
		Address:            addr,
		Contribution:       acc.Contribution,
		Pledge:             acc.Pledge,
		ReferralTotal:      acc.ReferralTotal,
		LastContributionAt: acc.LastContributionAt,
		Whitelisted:        l.IsWhitelisted(addr),
	}
	if tier, ok := l.UserTier(addr); ok {
		v.Tier = &tier
	}
	return v, nil
}

func (u *CampaignUseCase) GetContributors(ctx context.Context, id string) ([]domain.Address, error) {
	l, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return nonNil(l.Contributors.Items()), nil
}

func (u *CampaignUseCase) GetUserTier(ctx context.Context, id string, addr domain.Address) (*domain.RewardTier, error) {
	l, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tier, ok := l.UserTier(addr)
	if !ok {
		return nil, nil
	}
	return &tier, nil
}

func (u *CampaignUseCase) CurrentMilestone(ctx context.Context, id string) (domain.Amount, error) {
	l, err := u.repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return l.CurrentMilestone(), nil
}

// asCreator runs a transfer free mutation after checking that the caller
// is the campaign creator.
func (u *CampaignUseCase) asCreator(ctx context.Context, op, id string, fn func(l *domain.Ledger, now int64) error) error {
	return u.mutate(ctx, op, id, func(l *domain.Ledger, now int64, _ domain.TransferFunc) error {
		if err := u.auth.Authorize(ctx, l.Campaign.Creator); err != nil {
			return err
		}
		return fn(l, now)
	})
}

// mutate runs fn inside one store transaction. Transfers executed through
// the supplied TransferFunc are recorded; if the transaction does not
// commit they are reversed newest first. Events are published only after
// a successful commit.
func (u *CampaignUseCase) mutate(
	ctx context.Context,
	op, id string,
	fn func(l *domain.Ledger, now int64, pay domain.TransferFunc) error,
) error {
	now := u.clock.Now()
	var (
		token    domain.Address
		executed []domain.Transfer
		events   []domain.Event
	)
	err := u.repo.Update(ctx, id, func(l *domain.Ledger) error {
		token = l.Campaign.Token
		executed = executed[:0]
		pay := func(t domain.Transfer) error {
			if err := u.assets.Transfer(ctx, token, t.From, t.To, t.Amount); err != nil {
				return err
			}
			executed = append(executed, t)
			return nil
		}
		if err := fn(l, now.Unix(), pay); err != nil {
			return err
		}
		l.Campaign.UpdatedAt = now.UTC()
		events = l.DrainEvents()
		return nil
	})
	if err != nil {
		u.compensate(ctx, op, id, token, executed)
		return u.fail(ctx, op, id, err)
	}
	u.publish(ctx, now, events)
	u.logger.DebugContext(ctx, "campaign operation committed",
		slog.String("op", op),
		slog.String("campaign_id", id),
		slog.Int("transfers", len(executed)),
		slog.Int("events", len(events)),
	)
	return nil
}

func (u *CampaignUseCase) compensate(ctx context.Context, op, id string, token domain.Address, executed []domain.Transfer) {
	if len(executed) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, t := range slices.Backward(executed) {
		err := u.assets.Transfer(ctx, token, t.To, t.From, t.Amount)
		if err != nil {
			u.logger.ErrorContext(ctx, "transfer compensation failed",
				slog.String("op", op),
				slog.String("campaign_id", id),
				slog.String("from", t.To.String()),
				slog.String("to", t.From.String()),
				slog.Int64("amount", int64(t.Amount)),
				slog.Any("error", err),
			)
			continue
		}
		u.logger.WarnContext(ctx, "transfer compensated",
			slog.String("op", op),
			slog.String("campaign_id", id),
			slog.Int64("amount", int64(t.Amount)),
		)
	}
}

func (u *CampaignUseCase) publish(ctx context.Context, now time.Time, events []domain.Event) {
	if len(events) == 0 {
		return
	}
	for i := range events {
		events[i].ID = uuid.NewString()
		events[i].At = now.Unix()
	}
	u.events.Publish(ctx, events...)
}

// fail logs a rejected operation and returns err. Errors that do not carry
// a ledger code are wrapped as INTERNAL so callers always see one.
func (u *CampaignUseCase) fail(ctx context.Context, op, id string, err error) error {
	code := domain.CodeOf(err)
	if code == domain.CodeInternal {
		err = domain.Wrap(domain.CodeInternal, fmt.Sprintf("%s failed", op), err)
	}
	level := slog.LevelInfo
	if code.Fatal() {
		level = slog.LevelWarn
	}
	if code == domain.CodeInternal || code == domain.CodeTransferFailed {
		level = slog.LevelError
	}
	u.logger.Log(ctx, level, "campaign operation rejected",
		slog.String("op", op),
		slog.String("campaign_id", id),
		slog.String("code", string(code)),
		slog.Any("error", err),
	)
	return err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
