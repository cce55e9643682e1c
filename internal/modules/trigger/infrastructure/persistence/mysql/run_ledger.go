package mysql

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// RunLedger stores the last run date per job in trigger_runs. The upsert only
// moves last_run_date forward, so concurrent claims for the same day leave
// exactly one winner.
type RunLedger struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRunLedger(db *sqlx.DB) *RunLedger {
	return &RunLedger{db: db, now: time.Now}
}

func (l *RunLedger) Claim(ctx context.Context, name, day string) (bool, error) {
	query := `
		INSERT INTO trigger_runs (name, last_run_date, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			updated_at = IF(last_run_date < VALUES(last_run_date), VALUES(updated_at), updated_at),
			last_run_date = IF(last_run_date < VALUES(last_run_date), VALUES(last_run_date), last_run_date)
	`
	res, err := l.db.ExecContext(ctx, query, name, day, l.now())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// 1 for a fresh row, 2 for an advanced row, 0 when the date was already claimed.
	return affected > 0, nil
}

// Release drops the claim for day. A row already advanced past day is kept.
func (l *RunLedger) Release(ctx context.Context, name, day string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM trigger_runs WHERE name = ? AND last_run_date = ?`, name, day)
	return err
}
