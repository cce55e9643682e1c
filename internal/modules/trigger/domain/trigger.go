package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	NameDelayWarning            = "delay_warning"
	NameNotesReminder           = "notes_reminder"
	NameDaySpecialBirthdays     = "day_special_birthdays"
	NameDaySpecialAnniversaries = "day_special_anniversaries"
)

var ErrUnknownTrigger = errors.New("unknown trigger")

// Trigger is one cron check. Run evaluates the condition as of now and emits
// the notifications that became due.
type Trigger interface {
	Name() string
	Run(ctx context.Context, now time.Time) (Report, error)
}

// Report counts what a single run did.
type Report struct {
	Candidates  int
	Emitted     int
	Duplicates  int
	Skipped     int
	Unparseable int
	// AlreadyRan is set by once-daily triggers whose date was claimed earlier.
	AlreadyRan bool
}

func (r *Report) Add(o Report) {
	r.Candidates += o.Candidates
	r.Emitted += o.Emitted
	r.Duplicates += o.Duplicates
	r.Skipped += o.Skipped
	r.Unparseable += o.Unparseable
}

func (r Report) String() string {
	if r.AlreadyRan {
		return "already ran today"
	}
	return fmt.Sprintf("candidates=%d emitted=%d duplicates=%d skipped=%d unparseable=%d",
		r.Candidates, r.Emitted, r.Duplicates, r.Skipped, r.Unparseable)
}

// Result is the outcome of one trigger inside a runner pass.
type Result struct {
	Name     string
	Report   Report
	Err      error
	Duration time.Duration
}

func (r Result) Outcome() string {
	switch {
	case r.Err != nil:
		return "error"
	case r.Report.AlreadyRan:
		return "skipped"
	}
	return "ok"
}
