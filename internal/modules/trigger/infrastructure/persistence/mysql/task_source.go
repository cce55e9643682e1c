package mysql

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	notificationDomain "github.com/saransh1220/flow-management/internal/modules/notification/domain"
	"github.com/saransh1220/flow-management/internal/modules/trigger/domain"
	"github.com/saransh1220/flow-management/internal/shared/timeparse"
)

// TaskSource reads the tasks table, whose planned_at is a real DATETIME.
type TaskSource struct {
	db *sqlx.DB
}

func NewTaskSource(db *sqlx.DB) *TaskSource {
	return &TaskSource{db: db}
}

func (s *TaskSource) Name() string { return "tasks" }

type taskRow struct {
	ID         int64     `db:"id"`
	AssigneeID int64     `db:"assignee_id"`
	Title      string    `db:"title"`
	PlannedAt  time.Time `db:"planned_at"`
	Status     string    `db:"status"`
}

// DueBetween prefilters exact terminal spellings in SQL; the rest are
// normalized in Go by the caller.
func (s *TaskSource) DueBetween(ctx context.Context, from, to time.Time) ([]domain.DueTask, int, error) {
	query, args, err := sqlx.In(`
		SELECT id, assignee_id, title, planned_at, status
		FROM tasks
		WHERE planned_at > ? AND planned_at <= ?
		  AND LOWER(status) NOT IN (?)
		ORDER BY planned_at ASC, id ASC
	`, from, to, domain.TerminalStatuses())
	if err != nil {
		return nil, 0, err
	}
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, 0, err
	}
	tasks := make([]domain.DueTask, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, domain.DueTask{
			ID:          r.ID,
			AssigneeID:  r.AssigneeID,
			Title:       r.Title,
			PlannedAt:   r.PlannedAt,
			Status:      r.Status,
			RelatedType: notificationDomain.RelatedTask,
		})
	}
	return tasks, 0, nil
}

// ChecklistSource reads checklist_tasks. planned_date is free text, so the
// window is applied after parsing each row in Go.
type ChecklistSource struct {
	db  *sqlx.DB
	loc *time.Location
}

func NewChecklistSource(db *sqlx.DB, loc *time.Location) *ChecklistSource {
	if loc == nil {
		loc = time.UTC
	}
	return &ChecklistSource{db: db, loc: loc}
}

func (s *ChecklistSource) Name() string { return "checklist" }

type checklistRow struct {
	ID          int64  `db:"id"`
	AssigneeID  int64  `db:"assignee_id"`
	TaskName    string `db:"task_name"`
	PlannedDate string `db:"planned_date"`
	Status      string `db:"status"`
}

func (s *ChecklistSource) DueBetween(ctx context.Context, from, to time.Time) ([]domain.DueTask, int, error) {
	query := `
		SELECT id, assignee_id, task_name, planned_date, status
		FROM checklist_tasks
		WHERE planned_date <> ''
		ORDER BY id ASC
	`
	var rows []checklistRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, 0, err
	}

	var tasks []domain.DueTask
	unparseable := 0
	for _, r := range rows {
		if domain.IsTerminalStatus(r.Status) {
			continue
		}
		planned, err := timeparse.ParseLoose(r.PlannedDate, s.loc)
		if err != nil {
			unparseable++
			continue
		}
		if !planned.After(from) || planned.After(to) {
			continue
		}
		tasks = append(tasks, domain.DueTask{
			ID:          r.ID,
			AssigneeID:  r.AssigneeID,
			Title:       r.TaskName,
			PlannedAt:   planned,
			Status:      r.Status,
			RelatedType: notificationDomain.RelatedChecklistTask,
		})
	}
	return tasks, unparseable, nil
}
