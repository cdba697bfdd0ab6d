package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"crowdfund-escrow/internal/adapter/storage"
	"crowdfund-escrow/internal/core/domain"
)

const uniqueViolation = "23505"

const campaignColumns = `id, creator, admin, token, goal, hard_cap, deadline, min_contribution,
    total_raised, total_pledged, status, paused, platform_address, platform_fee_bps,
    code_hash, version, metadata, reward_tiers, stretch_goals, roadmap, created_at, updated_at`

const upsertAccount = `
    INSERT INTO campaign_accounts (campaign_id, address, contribution, pledge, referral_total,
        last_contribution_at, contributor_seq, pledger_seq, whitelist_seq)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    ON CONFLICT (campaign_id, address) DO UPDATE SET
        contribution = EXCLUDED.contribution,
        pledge = EXCLUDED.pledge,
        referral_total = EXCLUDED.referral_total,
        last_contribution_at = EXCLUDED.last_contribution_at,
        contributor_seq = EXCLUDED.contributor_seq,
        pledger_seq = EXCLUDED.pledger_seq,
        whitelist_seq = EXCLUDED.whitelist_seq`

// CampaignRepository implements port.CampaignRepository using pgxpool for
// PostgreSQL.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// Create inserts a new campaign together with its accounts.
func (r *CampaignRepository) Create(ctx context.Context, l *domain.Ledger) (err error) {
	rec, accounts, err := storage.Encode(l)
	if err != nil {
		return err
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `INSERT INTO campaigns (`+campaignColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
        ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Creator, rec.Admin, rec.Token, rec.Goal, rec.HardCap, rec.Deadline,
		rec.MinContribution, rec.TotalRaised, rec.TotalPledged, rec.Status, rec.Paused,
		rec.PlatformAddress, rec.PlatformFeeBps, rec.CodeHash, rec.Version,
		rec.Metadata, rec.RewardTiers, rec.StretchGoals, rec.Roadmap, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyInitialized
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyInitialized
	}
	return saveAccounts(ctx, tx, rec.ID, accounts)
}

// Get returns a consistent snapshot of a campaign.
func (r *CampaignRepository) Get(ctx context.Context, id string) (l *domain.Ledger, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	return load(ctx, tx, id, false)
}

// List returns a page of campaign IDs and the total count.
func (r *CampaignRepository) List(ctx context.Context, limit, offset int) ([]string, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM campaigns`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM campaigns ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

// Update runs fn on the campaign under a row lock inside a serializable
// transaction. The transaction commits only when fn and the write-back
// succeed; a failed commit is reported to the caller.
func (r *CampaignRepository) Update(ctx context.Context, id string, fn func(*domain.Ledger) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// lock campaign
	l, err := load(ctx, tx, id, true)
	if err != nil {
		return err
	}
	if err = fn(l); err != nil {
		return err
	}
	rec, accounts, err := storage.Encode(l)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE campaigns SET
            status = $2, total_raised = $3, total_pledged = $4, paused = $5, deadline = $6,
            code_hash = $7, version = $8, metadata = $9, reward_tiers = $10,
            stretch_goals = $11, roadmap = $12, updated_at = $13
        WHERE id = $1`,
		rec.ID, rec.Status, rec.TotalRaised, rec.TotalPledged, rec.Paused, rec.Deadline,
		rec.CodeHash, rec.Version, rec.Metadata, rec.RewardTiers, rec.StretchGoals, rec.Roadmap,
		rec.UpdatedAt)
	if err != nil {
		return err
	}
	return saveAccounts(ctx, tx, rec.ID, accounts)
}

func load(ctx context.Context, tx pgx.Tx, id string, lock bool) (*domain.Ledger, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var rec storage.CampaignRecord
	err := tx.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.Creator,
		&rec.Admin,
		&rec.Token,
		&rec.Goal,
		&rec.HardCap,
		&rec.Deadline,
		&rec.MinContribution,
		&rec.TotalRaised,
		&rec.TotalPledged,
		&rec.Status,
		&rec.Paused,
		&rec.PlatformAddress,
		&rec.PlatformFeeBps,
		&rec.CodeHash,
		&rec.Version,
		&rec.Metadata,
		&rec.RewardTiers,
		&rec.StretchGoals,
		&rec.Roadmap,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound.WithMetadata("campaign_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load campaign %s: %w", id, err)
	}

	rows, err := tx.Query(ctx, `SELECT address, contribution, pledge, referral_total, last_contribution_at,
            contributor_seq, pledger_seq, whitelist_seq
        FROM campaign_accounts WHERE campaign_id = $1`, id)
	if err != nil {
		return nil, err
	}
	accounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.AccountRecord, error) {
		var a storage.AccountRecord
		err := row.Scan(&a.Address, &a.Contribution, &a.Pledge, &a.ReferralTotal, &a.LastContributionAt,
			&a.ContributorSeq, &a.PledgerSeq, &a.WhitelistSeq)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("load accounts of %s: %w", id, err)
	}
	return storage.Decode(rec, accounts)
}

func saveAccounts(ctx context.Context, tx pgx.Tx, campaignID string, accounts []storage.AccountRecord) error {
	if len(accounts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, a := range accounts {
		batch.Queue(upsertAccount, campaignID, a.Address, a.Contribution, a.Pledge, a.ReferralTotal,
			a.LastContributionAt, a.ContributorSeq, a.PledgerSeq, a.WhitelistSeq)
	}
	return tx.SendBatch(ctx, batch).Close()
}
