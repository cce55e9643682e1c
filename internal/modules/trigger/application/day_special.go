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

// Occasion selects which date on a person is celebrated.
type Occasion int

const (
	Birthday Occasion = iota
	WorkAnniversary
)

// DaySpecial greets people on their birthday or work anniversary and tells
// their colleagues. It runs at most once per calendar day per occasion.
type DaySpecial struct {
	occasion Occasion
	people   domain.PeopleSource
	ledger   domain.RunLedger
	emitter  Emitter
	loc      *time.Location
	logger   *slog.Logger
}

func NewDaySpecial(occasion Occasion, people domain.PeopleSource, ledger domain.RunLedger, emitter Emitter, loc *time.Location, logger *slog.Logger) *DaySpecial {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	t := &DaySpecial{occasion: occasion, people: people, ledger: ledger, emitter: emitter, loc: loc}
	t.logger = logger.With("trigger", t.Name())
	return t
}

func (t *DaySpecial) Name() string {
	if t.occasion == WorkAnniversary {
		return domain.NameDaySpecialAnniversaries
	}
	return domain.NameDaySpecialBirthdays
}

// Run loads people before claiming the date, and releases the claim when any
// notification fails so the next invocation retries. Greetings already sent
// are absorbed by the per-day dedup key.
func (t *DaySpecial) Run(ctx context.Context, now time.Time) (domain.Report, error) {
	var report domain.Report
	today := now.In(t.loc)
	day := today.Format(time.DateOnly)

	people, err := t.people.ActivePeople(ctx)
	if err != nil {
		return report, fmt.Errorf("load people: %w", err)
	}

	claimed, err := t.ledger.Claim(ctx, t.Name(), day)
	if err != nil {
		return report, fmt.Errorf("claim run: %w", err)
	}
	if !claimed {
		report.AlreadyRan = true
		return report, nil
	}

	var celebrants []celebrant
	for _, p := range people {
		if c, ok := t.match(p, today); ok {
			celebrants = append(celebrants, c)
		}
	}
	if len(celebrants) == 0 {
		return report, nil
	}

	var errs []error
	for _, c := range celebrants {
		for _, recipient := range people {
			report.Candidates++
			in := t.colleagueNotice(c)
			if recipient.ID == c.person.ID {
				in = t.personalGreeting(c)
			}
			in.UserID = recipient.ID
			if _, err := emit(ctx, t.emitter, in, &report); err != nil {
				errs = append(errs, fmt.Errorf("notify user %d about %d: %w", recipient.ID, c.person.ID, err))
			}
		}
	}
	if len(errs) > 0 {
		if err := t.ledger.Release(ctx, t.Name(), day); err != nil {
			errs = append(errs, fmt.Errorf("release claim: %w", err))
		} else {
			t.logger.Warn("celebrations incomplete, claim released for retry", "day", day, "failed", len(errs))
		}
		return report, errors.Join(errs...)
	}
	t.logger.Info("celebrations sent", "celebrants", len(celebrants), "emitted", report.Emitted)
	return report, nil
}

type celebrant struct {
	person domain.Person
	years  int
}

func (t *DaySpecial) match(p domain.Person, today time.Time) (celebrant, bool) {
	date := p.BirthDate
	if t.occasion == WorkAnniversary {
		date = p.JoiningDate
	}
	if date == nil || date.IsZero() {
		return celebrant{}, false
	}
	if !sameDayOfYear(*date, today) {
		return celebrant{}, false
	}
	years := today.Year() - date.Year()
	if t.occasion == WorkAnniversary && years < 1 {
		return celebrant{}, false
	}
	return celebrant{person: p, years: years}, true
}

// sameDayOfYear matches month and day. A 29 February date is celebrated on
// 28 February in non-leap years.
func sameDayOfYear(date, today time.Time) bool {
	month, day := date.Month(), date.Day()
	if month == time.February && day == 29 && !isLeap(today.Year()) {
		day = 28
	}
	return today.Month() == month && today.Day() == day
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func (t *DaySpecial) relatedType() string {
	if t.occasion == WorkAnniversary {
		return notificationDomain.RelatedWorkAnniversary
	}
	return notificationDomain.RelatedBirthday
}

func (t *DaySpecial) personalGreeting(c celebrant) notificationDomain.NewNotification {
	in := notificationDomain.NewNotification{
		Type:        notificationDomain.TypeDaySpecial,
		RelatedID:   c.person.ID,
		RelatedType: t.relatedType(),
	}
	if t.occasion == WorkAnniversary {
		in.Title = "Happy work anniversary!"
		in.Message = fmt.Sprintf("Congratulations on %d %s with us, %s!", c.years, plural(c.years, "year", "years"), c.person.Name)
	} else {
		in.Title = "Happy birthday!"
		in.Message = fmt.Sprintf("Wishing you a wonderful birthday, %s!", c.person.Name)
	}
	return in
}

func (t *DaySpecial) colleagueNotice(c celebrant) notificationDomain.NewNotification {
	in := notificationDomain.NewNotification{
		Type:        notificationDomain.TypeDaySpecial,
		RelatedID:   c.person.ID,
		RelatedType: t.relatedType(),
	}
	if t.occasion == WorkAnniversary {
		in.Title = "Work anniversary"
		in.Message = fmt.Sprintf("%s completes %d %s today", c.person.Name, c.years, plural(c.years, "year", "years"))
	} else {
		in.Title = "Birthday today"
		in.Message = fmt.Sprintf("It's %s's birthday today", c.person.Name)
	}
	return in
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
