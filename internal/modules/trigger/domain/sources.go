package domain

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DueTask is a task whose planned time fell inside the requested window.
type DueTask struct {
	ID          int64
	AssigneeID  int64
	Title       string
	PlannedAt   time.Time
	Status      string
	RelatedType string
}

// TaskSource yields tasks planned in (from, to]. Rows whose planned time
// cannot be read are skipped and counted in unparseable.
type TaskSource interface {
	Name() string
	DueBetween(ctx context.Context, from, to time.Time) (tasks []DueTask, unparseable int, err error)
}

type DueNote struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	Title        string    `db:"title"`
	ReminderDate time.Time `db:"reminder_date"`
}

type NoteSource interface {
	// DueReminders returns open notes with an unsent reminder in [from, to].
	DueReminders(ctx context.Context, from, to time.Time) ([]DueNote, error)
	// MarkReminderSent flips reminder_sent; false means it was already set.
	MarkReminderSent(ctx context.Context, noteID int64) (bool, error)
}

type Person struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	BirthDate   *time.Time `db:"birth_date"`
	JoiningDate *time.Time `db:"joining_date"`
}

type PeopleSource interface {
	ActivePeople(ctx context.Context) ([]Person, error)
}

// RunLedger records the last calendar date a once-daily job ran.
type RunLedger interface {
	// Claim marks name as run on day (YYYY-MM-DD). It reports false when the
	// job already ran on that day or later.
	Claim(ctx context.Context, name, day string) (bool, error)
	// Release gives up a claim for day so a later run can retry it.
	Release(ctx context.Context, name, day string) error
}

var statusNoise = regexp.MustCompile(`[^a-z]+`)

// NormalizeStatus lowercases s and reduces punctuation and spacing to single
// spaces so "Not-Done", "not_done" and " NOT  DONE " compare equal.
func NormalizeStatus(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "'", "")
	return strings.TrimSpace(statusNoise.ReplaceAllString(s, " "))
}

var terminalStatuses = map[string]bool{
	"completed":       true,
	"complete":        true,
	"done":            true,
	"not done":        true,
	"cannot be done":  true,
	"can not be done": true,
	"cant be done":    true,
	"shifted":         true,
}

// IsTerminalStatus reports whether a task in this status no longer needs a
// delay warning.
func IsTerminalStatus(s string) bool {
	return terminalStatuses[NormalizeStatus(s)]
}

// TerminalStatuses lists the normalized terminal spellings in sorted order.
func TerminalStatuses() []string {
	out := make([]string, 0, len(terminalStatuses))
	for s := range terminalStatuses {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
