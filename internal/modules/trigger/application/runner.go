package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saransh1220/flow-management/internal/modules/trigger/domain"
)

// Runner executes triggers in isolation: one failing or panicking trigger
// never prevents the rest from running.
type Runner struct {
	triggers map[string]domain.Trigger
	order    []string
	logger   *slog.Logger
	now      func() time.Time
}

func NewRunner(logger *slog.Logger, triggers ...domain.Trigger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		triggers: make(map[string]domain.Trigger, len(triggers)),
		logger:   logger,
		now:      time.Now,
	}
	for _, t := range triggers {
		if _, dup := r.triggers[t.Name()]; !dup {
			r.order = append(r.order, t.Name())
		}
		r.triggers[t.Name()] = t
	}
	return r
}

// Names lists registered triggers in registration order.
func (r *Runner) Names() []string {
	return append([]string(nil), r.order...)
}

// Run executes a single trigger by name.
func (r *Runner) Run(ctx context.Context, name string) (domain.Result, error) {
	t, ok := r.triggers[name]
	if !ok {
		return domain.Result{Name: name}, fmt.Errorf("%w: %s", domain.ErrUnknownTrigger, name)
	}
	return r.execute(ctx, t), nil
}

// RunAll executes every registered trigger in order.
func (r *Runner) RunAll(ctx context.Context) []domain.Result {
	return r.RunNames(ctx, r.order...)
}

// RunNames executes the named triggers, reporting unknown names as errors.
func (r *Runner) RunNames(ctx context.Context, names ...string) []domain.Result {
	results := make([]domain.Result, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		res, err := r.Run(ctx, name)
		if err != nil {
			res.Err = err
			r.logger.Error("trigger not registered", "trigger", name)
		}
		results = append(results, res)
	}
	return results
}

func (r *Runner) execute(ctx context.Context, t domain.Trigger) (res domain.Result) {
	res.Name = t.Name()
	start := r.now()

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("trigger %s panicked: %v", t.Name(), p)
		}
		res.Duration = r.now().Sub(start)

		triggerRuns.WithLabelValues(res.Name, res.Outcome()).Inc()
		triggerDuration.WithLabelValues(res.Name).Observe(res.Duration.Seconds())

		if res.Err != nil {
			r.logger.Error("trigger failed", "trigger", res.Name, "error", res.Err, "report", res.Report.String())
			return
		}
		r.logger.Info("trigger finished", "trigger", res.Name, "report", res.Report.String(), "duration", res.Duration)
	}()

	res.Report, res.Err = t.Run(ctx, start)
	return res
}
