package trigger

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/flow-management/internal/modules/trigger/application"
	"github.com/saransh1220/flow-management/internal/modules/trigger/domain"
	"github.com/saransh1220/flow-management/internal/modules/trigger/infrastructure/persistence/mysql"
)

// Job names accepted by `fms cron run`.
const (
	JobDelay      = "delay"
	JobNotes      = "notes"
	JobDaySpecial = "day-special"
	JobAll        = "all"
)

// Settings controls trigger windows and scheduling.
type Settings struct {
	DelayWindow   time.Duration
	NotesWindow   time.Duration
	CheckInterval time.Duration
	DailyInterval time.Duration
}

type Module struct {
	runner   *application.Runner
	settings Settings
	logger   *slog.Logger
}

// NewModule wires every trigger against MySQL. emitter is normally the
// notification module's service.
func NewModule(db *sqlx.DB, emitter application.Emitter, settings Settings, loc *time.Location, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.Default()
	}
	people := mysql.NewPeopleSource(db)
	ledger := mysql.NewRunLedger(db)

	runner := application.NewRunner(logger,
		application.NewDelayWarning(emitter, settings.DelayWindow, loc, logger,
			mysql.NewTaskSource(db),
			mysql.NewChecklistSource(db, loc),
		),
		application.NewNotesReminder(mysql.NewNoteSource(db), emitter, settings.NotesWindow, logger),
		application.NewDaySpecial(application.Birthday, people, ledger, emitter, loc, logger),
		application.NewDaySpecial(application.WorkAnniversary, people, ledger, emitter, loc, logger),
	)
	return &Module{runner: runner, settings: settings, logger: logger}
}

func (m *Module) Runner() *application.Runner {
	return m.runner
}

// Scheduler runs the minute checks every CheckInterval and the day-special
// pass every DailyInterval.
func (m *Module) Scheduler() *application.Scheduler {
	return application.NewScheduler(m.runner, m.logger,
		application.Schedule{Interval: m.settings.CheckInterval, Triggers: concat(jobTriggers[JobDelay], jobTriggers[JobNotes])},
		application.Schedule{Interval: m.settings.DailyInterval, Triggers: jobTriggers[JobDaySpecial]},
	)
}

var jobTriggers = map[string][]string{
	JobDelay:      {domain.NameDelayWarning},
	JobNotes:      {domain.NameNotesReminder},
	JobDaySpecial: {domain.NameDaySpecialBirthdays, domain.NameDaySpecialAnniversaries},
}

// JobTriggers resolves a cron job name to the triggers it runs.
func JobTriggers(job string) ([]string, error) {
	if job == JobAll {
		return concat(jobTriggers[JobDelay], jobTriggers[JobNotes], jobTriggers[JobDaySpecial]), nil
	}
	names, ok := jobTriggers[job]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", domain.ErrUnknownTrigger, job, Jobs())
	}
	return concat(names), nil
}

// Jobs lists the accepted job names.
func Jobs() []string {
	jobs := []string{JobAll}
	for name := range jobTriggers {
		jobs = append(jobs, name)
	}
	sort.Strings(jobs)
	return jobs
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
