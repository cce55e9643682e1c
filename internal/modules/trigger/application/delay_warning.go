package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	notificationDomain "github.com/saransh1220/flow-management/internal/modules/notification/domain"
	"github.com/saransh1220/flow-management/internal/modules/trigger/domain"
)

// DelayWarning warns assignees about tasks planned within the next Window.
type DelayWarning struct {
	sources []domain.TaskSource
	emitter Emitter
	window  time.Duration
	loc     *time.Location
	logger  *slog.Logger
}

func NewDelayWarning(emitter Emitter, window time.Duration, loc *time.Location, logger *slog.Logger, sources ...domain.TaskSource) *DelayWarning {
	if window <= 0 {
		window = 5 * time.Minute
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DelayWarning{
		sources: sources,
		emitter: emitter,
		window:  window,
		loc:     loc,
		logger:  logger.With("trigger", domain.NameDelayWarning),
	}
}

func (t *DelayWarning) Name() string { return domain.NameDelayWarning }

// Run scans every source for tasks planned in (now, now+window]. A failing
// source is reported but does not stop the others.
func (t *DelayWarning) Run(ctx context.Context, now time.Time) (domain.Report, error) {
	var report domain.Report
	var errs []error
	to := now.Add(t.window)

	for _, src := range t.sources {
		tasks, unparseable, err := src.DueBetween(ctx, now, to)
		report.Unparseable += unparseable
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if unparseable > 0 {
			t.logger.Warn("skipped rows with unreadable planned date", "source", src.Name(), "count", unparseable)
		}

		for _, task := range tasks {
			report.Candidates++
			if domain.IsTerminalStatus(task.Status) || !task.PlannedAt.After(now) || task.PlannedAt.After(to) {
				report.Skipped++
				continue
			}
			_, err := emit(ctx, t.emitter, notificationDomain.NewNotification{
				UserID:      task.AssigneeID,
				Type:        notificationDomain.TypeTaskDelay,
				Title:       "Task due soon",
				Message:     fmt.Sprintf("\"%s\" is planned for %s", task.Title, task.PlannedAt.In(t.loc).Format("03:04 PM")),
				RelatedID:   task.ID,
				RelatedType: task.RelatedType,
			}, &report)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s task %d: %w", src.Name(), task.ID, err))
			}
		}
	}
	return report, errors.Join(errs...)
}
