package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Options struct {
	InitialDelay   time.Duration
	Interval       time.Duration
	RequestTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.InitialDelay <= 0 {
		o.InitialDelay = 3 * time.Second
	}
	if o.Interval <= 0 {
		o.Interval = 10 * time.Second
	}
	if o.RequestTimeout <= 0 || o.RequestTimeout > o.Interval {
		o.RequestTimeout = o.Interval
	}
	return o
}

// Poller fetches on a fixed cadence from a single goroutine, so responses are
// always applied in request order.
type Poller struct {
	client  Client
	store   AlertedStore
	alerter Alerter
	logger  *slog.Logger
	opts    Options
	now     func() time.Time

	mu          sync.RWMutex
	seen        map[int64]struct{}
	initialLoad bool
	lastSync    time.Time
}

func New(client Client, store AlertedStore, alerter Alerter, logger *slog.Logger, opts Options) *Poller {
	if store == nil {
		store = NewMemoryAlertedStore(DefaultAlertedCap)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:      client,
		store:       store,
		alerter:     alerter,
		logger:      logger,
		opts:        opts.withDefaults(),
		now:         time.Now,
		seen:        map[int64]struct{}{},
		initialLoad: true,
	}
}

// Run waits InitialDelay, polls once, then polls every Interval until ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) error {
	timer := time.NewTimer(p.opts.InitialDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	_ = p.Poll(ctx)

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = p.Poll(ctx)
		}
	}
}

// Poll performs one fetch and alerts on unread notifications not seen in
// the previous fetch. The first successful fetch only records IDs. Failures
// are logged at debug level and leave the state untouched.
func (p *Poller) Poll(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, p.opts.RequestTimeout)
	defer cancel()

	snap, err := p.client.Fetch(reqCtx)
	if err != nil {
		p.logger.Debug("notification poll failed", "error", err)
		return err
	}

	p.mu.Lock()
	previous := p.seen
	initial := p.initialLoad
	current := make(map[int64]struct{}, len(snap.Notifications))
	for _, n := range snap.Notifications {
		current[n.ID] = struct{}{}
	}
	p.seen = current
	p.initialLoad = false
	p.lastSync = p.now()
	p.mu.Unlock()

	if p.alerter != nil {
		p.alerter.Badge(snap.UnreadCount)
	}
	if initial {
		return nil
	}

	for _, n := range snap.Notifications {
		if _, known := previous[n.ID]; known || n.IsRead {
			continue
		}
		alerted, err := p.store.Has(ctx, n.ID)
		if err != nil {
			p.logger.Debug("alerted lookup failed", "id", n.ID, "error", err)
			continue
		}
		if alerted {
			continue
		}
		if err := p.store.Add(ctx, n.ID); err != nil {
			p.logger.Debug("alerted store write failed", "id", n.ID, "error", err)
			continue
		}
		if p.alerter != nil {
			p.alerter.Alert(n)
		}
	}
	return nil
}

// LastSync is the time of the last successful fetch.
func (p *Poller) LastSync() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
