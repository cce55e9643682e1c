package application

import (
	"context"
	"errors"
	"sync"
	"time"

	notificationDomain "github.com/saransh1220/flow-management/internal/modules/notification/domain"
	"github.com/saransh1220/flow-management/internal/modules/trigger/domain"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

// memoryEmitter applies the per-day dedup key the way the notification store does.
type memoryEmitter struct {
	mu   sync.Mutex
	now  func() time.Time
	fail error
	seen map[notificationDomain.DedupKey]bool
	sent []notificationDomain.NewNotification
}

func newMemoryEmitter(now time.Time) *memoryEmitter {
	return &memoryEmitter{
		now:  func() time.Time { return now },
		seen: map[notificationDomain.DedupKey]bool{},
	}
}

func (e *memoryEmitter) Emit(_ context.Context, in notificationDomain.NewNotification) (*notificationDomain.Notification, bool, error) {
	if err := in.Validate(); err != nil {
		return nil, false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return nil, false, e.fail
	}
	key := notificationDomain.DedupKey{
		UserID:      in.UserID,
		RelatedID:   in.RelatedID,
		RelatedType: in.RelatedType,
		Type:        in.Type,
		Day:         notificationDomain.DedupDay(e.now(), ist),
	}
	if e.seen[key] {
		return nil, false, nil
	}
	e.seen[key] = true
	e.sent = append(e.sent, in)
	return &notificationDomain.Notification{ID: int64(len(e.sent)), UserID: in.UserID, Type: in.Type}, true, nil
}

func (e *memoryEmitter) sentTo(userID int64) []notificationDomain.NewNotification {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []notificationDomain.NewNotification
	for _, n := range e.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (e *memoryEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sent)
}

// taskSourceStub filters its rows by the requested window like the SQL does.
type taskSourceStub struct {
	name        string
	tasks       []domain.DueTask
	unparseable int
	err         error
}

func (s taskSourceStub) Name() string { return s.name }

func (s taskSourceStub) DueBetween(_ context.Context, from, to time.Time) ([]domain.DueTask, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	var out []domain.DueTask
	for _, t := range s.tasks {
		if t.PlannedAt.After(from) && !t.PlannedAt.After(to) {
			out = append(out, t)
		}
	}
	return out, s.unparseable, nil
}

type noteSourceStub struct {
	mu      sync.Mutex
	notes   []domain.DueNote
	sent    map[int64]bool
	loadErr error
	markErr error
}

func newNoteSourceStub(notes ...domain.DueNote) *noteSourceStub {
	return &noteSourceStub{notes: notes, sent: map[int64]bool{}}
}

func (s *noteSourceStub) DueReminders(_ context.Context, from, to time.Time) ([]domain.DueNote, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.DueNote
	for _, n := range s.notes {
		if s.sent[n.ID] || n.ReminderDate.Before(from) || n.ReminderDate.After(to) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *noteSourceStub) MarkReminderSent(_ context.Context, id int64) (bool, error) {
	if s.markErr != nil {
		return false, s.markErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent[id] {
		return false, nil
	}
	s.sent[id] = true
	return true, nil
}

type peopleStub struct {
	people []domain.Person
	err    error
}

func (s peopleStub) ActivePeople(context.Context) ([]domain.Person, error) {
	return s.people, s.err
}

// memoryLedger advances a per-name date only forward.
type memoryLedger struct {
	mu         sync.Mutex
	days       map[string]string
	err        error
	releaseErr error
	released   []string
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{days: map[string]string{}}
}

func (l *memoryLedger) Claim(_ context.Context, name, day string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.days[name]; ok && last >= day {
		return false, nil
	}
	l.days[name] = day
	return true, nil
}

func (l *memoryLedger) Release(_ context.Context, name, day string) error {
	if l.releaseErr != nil {
		return l.releaseErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.days[name] == day {
		delete(l.days, name)
	}
	l.released = append(l.released, name+"@"+day)
	return nil
}

type triggerFunc struct {
	name string
	run  func(context.Context, time.Time) (domain.Report, error)
}

func (t triggerFunc) Name() string { return t.name }

func (t triggerFunc) Run(ctx context.Context, now time.Time) (domain.Report, error) {
	return t.run(ctx, now)
}

var errBoom = errors.New("boom")

func at(hhmm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", "2026-03-10 "+hhmm, ist)
	if err != nil {
		panic(err)
	}
	return t
}

func date(s string) *time.Time {
	t, err := time.ParseInLocation(time.DateOnly, s, ist)
	if err != nil {
		panic(err)
	}
	return &t
}
