package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/flow-management/internal/modules/workflow/domain"
)

type MySQLMeetingRepository struct {
	db *sqlx.DB
}

func NewMySQLMeetingRepository(db *sqlx.DB) *MySQLMeetingRepository {
	return &MySQLMeetingRepository{db: db}
}

func (r *MySQLMeetingRepository) Create(ctx context.Context, m *domain.Meeting) error {
	query := `
		INSERT INTO meetings (requester_id, host_id, title, scheduled_at, status, created_at, updated_at)
		VALUES (:requester_id, :host_id, :title, :scheduled_at, :status, :created_at, :updated_at)
	`
	res, err := r.db.NamedExecContext(ctx, query, m)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (r *MySQLMeetingRepository) GetByID(ctx context.Context, id int64) (*domain.Meeting, error) {
	query := `
		SELECT id, requester_id, host_id, title, scheduled_at, status, created_at, updated_at
		FROM meetings
		WHERE id = ?
	`
	var m domain.Meeting
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MySQLMeetingRepository) Transition(ctx context.Context, d domain.MeetingDecision) error {
	query := `
		UPDATE meetings
		SET status = ?, scheduled_at = COALESCE(?, scheduled_at), updated_at = ?
		WHERE id = ? AND status = ?
	`
	res, err := r.db.ExecContext(ctx, query, d.To, d.ScheduledAt, d.At, d.MeetingID, d.From)
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
