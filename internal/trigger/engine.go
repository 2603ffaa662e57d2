package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// tickInterval is the poll period of the run loop. Jobs only need
// minute-granularity precision, so one second leaves plenty of slack.
const tickInterval = time.Second

// Logger is the subset of the application logger the engine needs.
type Logger interface {
	Debugf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

type entry struct {
	spec     string
	schedule cron.Schedule
	next     time.Time
	run      func(ctx context.Context) error
}

// Engine is a single-threaded cooperative scheduler. Triggers are
// registered before Run is called; on each tick every trigger whose due
// time has passed executes synchronously, in registration order. A
// long-running job blocks the loop until it returns.
type Engine struct {
	entries []*entry
	logger  Logger
	now     func() time.Time
}

func New(logger Logger) *Engine {
	return &Engine{logger: logger, now: time.Now}
}

// Add registers a recurring trigger described by a standard five-field
// cron spec. The first due time is computed from the current clock.
func (e *Engine) Add(spec string, run func(ctx context.Context) error) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("parse trigger spec %q: %w", spec, err)
	}
	e.entries = append(e.entries, &entry{
		spec:     spec,
		schedule: schedule,
		next:     schedule.Next(e.now()),
		run:      run,
	})
	return nil
}

// Len reports the number of registered triggers.
func (e *Engine) Len() int { return len(e.entries) }

// RunPending executes every trigger that is due at the given instant
// and reschedules it. One failing job does not stop the remaining
// entries from being evaluated: errors and panics are confined to the
// entry that raised them.
func (e *Engine) RunPending(ctx context.Context, at time.Time) {
	for _, entry := range e.entries {
		if entry.next.After(at) {
			continue
		}
		e.execute(ctx, entry)
		entry.next = entry.schedule.Next(at)
	}
}

func (e *Engine) execute(ctx context.Context, entry *entry) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("Trigger %q panicked: %v", entry.spec, r)
		}
	}()
	if err := entry.run(ctx); err != nil {
		e.logger.Errorf("Trigger %q failed: %v", entry.spec, err)
	}
}

// Run blocks, polling for due triggers once per second until the
// context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.logger.Debugf("Checking for due triggers")
			e.RunPending(ctx, e.now())
		}
	}
}
