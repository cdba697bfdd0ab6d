// Package sqlite provides the embedded SQLite implementation of the
// campaign ledger store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"crowdfund-escrow/internal/adapter/storage"
	"crowdfund-escrow/internal/core/domain"
)

const campaignColumns = `id, creator, admin, token, goal, hard_cap, deadline, min_contribution,
    total_raised, total_pledged, status, paused, platform_address, platform_fee_bps,
    code_hash, version, metadata, reward_tiers, stretch_goals, roadmap, created_at, updated_at`

const upsertAccount = `
    INSERT INTO campaign_accounts (campaign_id, address, contribution, pledge, referral_total,
        last_contribution_at, contributor_seq, pledger_seq, whitelist_seq)
    VALUES (?,?,?,?,?,?,?,?,?)
    ON CONFLICT (campaign_id, address) DO UPDATE SET
        contribution = excluded.contribution,
        pledge = excluded.pledge,
        referral_total = excluded.referral_total,
        last_contribution_at = excluded.last_contribution_at,
        contributor_seq = excluded.contributor_seq,
        pledger_seq = excluded.pledger_seq,
        whitelist_seq = excluded.whitelist_seq`

// CampaignRepository implements port.CampaignRepository on a database/sql
// handle opened with the modernc driver. Transactions start with
// BEGIN IMMEDIATE so the write lock is taken before the ledger is read.
type CampaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository returns a repository over db.
func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Create inserts a new campaign together with its accounts.
func (r *CampaignRepository) Create(ctx context.Context, l *domain.Ledger) (err error) {
	if r == nil || r.db == nil {
		return errors.New("storage is not configured")
	}
	rec, accounts, err := storage.Encode(l)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO campaigns (`+campaignColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Creator, rec.Admin, rec.Token, rec.Goal, rec.HardCap, rec.Deadline,
		rec.MinContribution, rec.TotalRaised, rec.TotalPledged, rec.Status, rec.Paused,
		rec.PlatformAddress, rec.PlatformFeeBps, rec.CodeHash, rec.Version,
		string(rec.Metadata), string(rec.RewardTiers), string(rec.StretchGoals), string(rec.Roadmap),
		toMillis(rec.CreatedAt), toMillis(rec.UpdatedAt))
	if err != nil {
		if isConstraintViolation(err) {
			return domain.ErrAlreadyInitialized
		}
		return fmt.Errorf("insert campaign: %w", err)
	}
	return saveAccounts(ctx, tx, rec.ID, accounts)
}

// Get returns a snapshot of a campaign.
func (r *CampaignRepository) Get(ctx context.Context, id string) (*domain.Ledger, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("storage is not configured")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()
	return load(ctx, tx, id)
}

// List returns a page of campaign IDs and the total count.
func (r *CampaignRepository) List(ctx context.Context, limit, offset int) ([]string, int, error) {
	if r == nil || r.db == nil {
		return nil, 0, errors.New("storage is not configured")
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM campaigns`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM campaigns ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, 0, err
		}
		ids = append(ids, id)
	}
	return ids, total, rows.Err()
}

// Update runs fn on the campaign inside one write transaction and
// persists the result when fn succeeds.
func (r *CampaignRepository) Update(ctx context.Context, id string, fn func(*domain.Ledger) error) (err error) {
	if r == nil || r.db == nil {
		return errors.New("storage is not configured")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	l, err := load(ctx, tx, id)
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
	_, err = tx.ExecContext(ctx, `UPDATE campaigns SET
            status = ?, total_raised = ?, total_pledged = ?, paused = ?, deadline = ?,
            code_hash = ?, version = ?, metadata = ?, reward_tiers = ?,
            stretch_goals = ?, roadmap = ?, updated_at = ?
        WHERE id = ?`,
		rec.Status, rec.TotalRaised, rec.TotalPledged, rec.Paused, rec.Deadline,
		rec.CodeHash, rec.Version, string(rec.Metadata), string(rec.RewardTiers),
		string(rec.StretchGoals), string(rec.Roadmap), toMillis(rec.UpdatedAt), rec.ID)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return saveAccounts(ctx, tx, rec.ID, accounts)
}

func load(ctx context.Context, tx *sql.Tx, id string) (*domain.Ledger, error) {
	var (
		rec                  storage.CampaignRecord
		createdAt, updatedAt int64
	)
	err := tx.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id).Scan(
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
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound.WithMetadata("campaign_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load campaign %s: %w", id, err)
	}
	rec.CreatedAt, rec.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)

	rows, err := tx.QueryContext(ctx, `SELECT address, contribution, pledge, referral_total, last_contribution_at,
            contributor_seq, pledger_seq, whitelist_seq
        FROM campaign_accounts WHERE campaign_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []storage.AccountRecord
	for rows.Next() {
		var a storage.AccountRecord
		if err = rows.Scan(&a.Address, &a.Contribution, &a.Pledge, &a.ReferralTotal, &a.LastContributionAt,
			&a.ContributorSeq, &a.PledgerSeq, &a.WhitelistSeq); err != nil {
			return nil, fmt.Errorf("load accounts of %s: %w", id, err)
		}
		accounts = append(accounts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return storage.Decode(rec, accounts)
}

func saveAccounts(ctx context.Context, tx *sql.Tx, campaignID string, accounts []storage.AccountRecord) error {
	if len(accounts) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, upsertAccount)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, a := range accounts {
		if _, err = stmt.ExecContext(ctx, campaignID, a.Address, a.Contribution, a.Pledge, a.ReferralTotal,
			a.LastContributionAt, a.ContributorSeq, a.PledgerSeq, a.WhitelistSeq); err != nil {
			return fmt.Errorf("save account %s: %w", a.Address, err)
		}
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
