package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/flow-management/internal/modules/workflow/domain"
)

type MySQLLeaveRepository struct {
	db *sqlx.DB
}

func NewMySQLLeaveRepository(db *sqlx.DB) *MySQLLeaveRepository {
	return &MySQLLeaveRepository{db: db}
}

func (r *MySQLLeaveRepository) Create(ctx context.Context, leave *domain.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (user_id, manager_id, leave_type, start_date, end_date, reason,
			status, created_at, updated_at)
		VALUES (:user_id, :manager_id, :leave_type, :start_date, :end_date, :reason,
			:status, :created_at, :updated_at)
	`
	res, err := r.db.NamedExecContext(ctx, query, leave)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	leave.ID = id
	return nil
}

func (r *MySQLLeaveRepository) GetByID(ctx context.Context, id int64) (*domain.LeaveRequest, error) {
	query := `
		SELECT id, user_id, manager_id, leave_type, start_date, end_date, reason, status,
			decided_by, decided_at, decision_note, created_at, updated_at
		FROM leave_requests
		WHERE id = ?
	`
	var leave domain.LeaveRequest
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLeaveNotFound
		}
		return nil, err
	}
	return &leave, nil
}

// Transition is a compare-and-set on status; the binary collation on the
// column makes the comparison byte-exact.
func (r *MySQLLeaveRepository) Transition(ctx context.Context, d domain.LeaveDecision) error {
	query := `
		UPDATE leave_requests
		SET status = ?, decided_by = ?, decided_at = ?, decision_note = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	res, err := r.db.ExecContext(ctx, query, d.To, d.DecidedBy, d.At, d.Note, d.At, d.LeaveID, d.From)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *MySQLLeaveRepository) ListNonCanonical(ctx context.Context) ([]domain.LeaveStatusRow, error) {
	query := `
		SELECT id, status FROM leave_requests
		WHERE status NOT IN (?, ?, ?, ?)
		ORDER BY id
	`
	rows := []domain.LeaveStatusRow{}
	err := r.db.SelectContext(ctx, &rows, query,
		domain.LeavePending, domain.LeaveApproved, domain.LeaveRejected, domain.LeaveCancelled)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MySQLLeaveRepository) RewriteStatus(ctx context.Context, id int64, raw string, to domain.LeaveStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE leave_requests SET status = ? WHERE id = ? AND status = ?`, to, id, raw)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
