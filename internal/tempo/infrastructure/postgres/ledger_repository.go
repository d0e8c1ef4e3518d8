package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	tempo "wattcompare/internal/tempo/domain"
)

const (
	defaultDaysTable  = "tempo_days"
	defaultQuotaTable = "tempo_season_quotas"
)

// LedgerRepository persists the color-calendar ledger. The engine only ever
// sees the immutable snapshot it loads; AppendDay is the single narrow
// mutation path, used when a newly-observed day is published.
type LedgerRepository struct {
	db         *sql.DB
	daysTable  string
	quotaTable string
}

// LedgerOption configures the repository.
type LedgerOption func(*LedgerRepository)

// WithDaysTable overrides the days table name.
func WithDaysTable(table string) LedgerOption {
	return func(r *LedgerRepository) {
		if table != "" {
			r.daysTable = table
		}
	}
}

// WithQuotaTable overrides the quota table name.
func WithQuotaTable(table string) LedgerOption {
	return func(r *LedgerRepository) {
		if table != "" {
			r.quotaTable = table
		}
	}
}

// NewLedgerRepository constructs a repository.
func NewLedgerRepository(db *sql.DB, opts ...LedgerOption) *LedgerRepository {
	r := &LedgerRepository{
		db:         db,
		daysTable:  defaultDaysTable,
		quotaTable: defaultQuotaTable,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadSeason returns the ledger snapshot for one season.
func (r *LedgerRepository) LoadSeason(ctx context.Context, seasonID string) (tempo.Ledger, error) {
	if r == nil || r.db == nil {
		return tempo.Ledger{}, errors.New("ledger repository: nil db")
	}
	if seasonID == "" {
		return tempo.Ledger{}, errors.New("ledger repository: empty season id")
	}

	entries, err := r.loadDays(ctx, seasonID)
	if err != nil {
		return tempo.Ledger{}, err
	}
	quota, err := r.loadQuota(ctx, seasonID)
	if err != nil {
		return tempo.Ledger{}, err
	}
	return tempo.NewLedger(entries, quota), nil
}

func (r *LedgerRepository) loadDays(ctx context.Context, seasonID string) (map[tempo.DayKey]tempo.Color, error) {
	query := fmt.Sprintf(`
SELECT day, color
FROM %s
WHERE season_id = $1`, r.daysTable)

	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[tempo.DayKey]tempo.Color)
	for rows.Next() {
		var day, color string
		if err := rows.Scan(&day, &color); err != nil {
			return nil, err
		}
		c := tempo.Color(color)
		if !c.IsValid() {
			return nil, fmt.Errorf("ledger repository: day %s: unknown color %q", day, color)
		}
		entries[tempo.DayKey(day)] = c
	}
	return entries, rows.Err()
}

func (r *LedgerRepository) loadQuota(ctx context.Context, seasonID string) (tempo.SeasonQuota, error) {
	query := fmt.Sprintf(`
SELECT color, remaining
FROM %s
WHERE season_id = $1`, r.quotaTable)

	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return tempo.SeasonQuota{}, err
	}
	defer rows.Close()

	quota := tempo.SeasonQuota{SeasonID: seasonID, Remaining: make(map[tempo.Color]int)}
	for rows.Next() {
		var color string
		var remaining int
		if err := rows.Scan(&color, &remaining); err != nil {
			return tempo.SeasonQuota{}, err
		}
		quota.Remaining[tempo.Color(color)] = remaining
	}
	return quota, rows.Err()
}

// AppendDay records a newly-observed day and decrements the season quota for
// its color. A day already in the ledger is left untouched: known entries
// are never overwritten.
func (r *LedgerRepository) AppendDay(ctx context.Context, seasonID string, day tempo.DayKey, color tempo.Color) error {
	if r == nil || r.db == nil {
		return errors.New("ledger repository: nil db")
	}
	if !color.IsValid() {
		return fmt.Errorf("ledger repository: unknown color %q", color)
	}
	if _, err := day.Time(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	insert := fmt.Sprintf(`
INSERT INTO %s (season_id, day, color)
VALUES ($1, $2, $3)
ON CONFLICT (day) DO NOTHING`, r.daysTable)

	result, err := tx.ExecContext(ctx, insert, seasonID, day.String(), string(color))
	if err != nil {
		return err
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return nil
	}

	decrement := fmt.Sprintf(`
UPDATE %s
SET remaining = remaining - 1
WHERE season_id = $1 AND color = $2 AND remaining > 0`, r.quotaTable)

	if _, err := tx.ExecContext(ctx, decrement, seasonID, string(color)); err != nil {
		return err
	}
	return tx.Commit()
}
