package mysql

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/flow-management/internal/modules/trigger/domain"
)

type NoteSource struct {
	db *sqlx.DB
}

func NewNoteSource(db *sqlx.DB) *NoteSource {
	return &NoteSource{db: db}
}

func (s *NoteSource) DueReminders(ctx context.Context, from, to time.Time) ([]domain.DueNote, error) {
	query := `
		SELECT id, user_id, title, reminder_date
		FROM notes
		WHERE reminder_date IS NOT NULL
		  AND reminder_date >= ? AND reminder_date <= ?
		  AND is_completed = FALSE
		  AND reminder_sent = FALSE
		ORDER BY reminder_date ASC, id ASC
	`
	notes := []domain.DueNote{}
	if err := s.db.SelectContext(ctx, &notes, query, from, to); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *NoteSource) MarkReminderSent(ctx context.Context, noteID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE notes SET reminder_sent = TRUE WHERE id = ? AND reminder_sent = FALSE`, noteID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
