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

// NotesReminder fires note reminders whose time arrived in the last Window.
type NotesReminder struct {
	notes   domain.NoteSource
	emitter Emitter
	window  time.Duration
	logger  *slog.Logger
}

func NewNotesReminder(notes domain.NoteSource, emitter Emitter, window time.Duration, logger *slog.Logger) *NotesReminder {
	if window <= 0 {
		window = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotesReminder{
		notes:   notes,
		emitter: emitter,
		window:  window,
		logger:  logger.With("trigger", domain.NameNotesReminder),
	}
}

func (t *NotesReminder) Name() string { return domain.NameNotesReminder }

// Run emits for notes due in [now-window, now] and flips reminder_sent. The
// flag is set even when the emit was a duplicate so the note stops firing.
func (t *NotesReminder) Run(ctx context.Context, now time.Time) (domain.Report, error) {
	var report domain.Report
	notes, err := t.notes.DueReminders(ctx, now.Add(-t.window), now)
	if err != nil {
		return report, fmt.Errorf("load due notes: %w", err)
	}

	var errs []error
	for _, note := range notes {
		report.Candidates++
		_, err := emit(ctx, t.emitter, notificationDomain.NewNotification{
			UserID:      note.UserID,
			Type:        notificationDomain.TypeNotesReminder,
			Title:       "Note reminder",
			Message:     note.Title,
			RelatedID:   note.ID,
			RelatedType: notificationDomain.RelatedNote,
		}, &report)
		if err != nil {
			errs = append(errs, fmt.Errorf("note %d: %w", note.ID, err))
			continue
		}
		if _, err := t.notes.MarkReminderSent(ctx, note.ID); err != nil {
			errs = append(errs, fmt.Errorf("mark note %d sent: %w", note.ID, err))
		}
	}
	return report, errors.Join(errs...)
}
