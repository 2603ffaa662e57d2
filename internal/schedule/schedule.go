package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/spangle/simplebackup/internal/domain"
)

// now is swapped out in tests that exercise date gating.
var now = time.Now

// Once backs up only when invoked manually. It never registers a
// trigger.
type Once struct{}

func (Once) Type() string      { return "once" }
func (Once) Aliases() []string { return []string{"once", "manual", "run-once"} }

func (Once) Partition(ts time.Time) string { return ts.Format("2006") }

func (Once) Register(domain.Registrar, domain.Job, domain.Source) error { return nil }

// Monthly fires a daily midnight trigger whose body only runs on the
// first of the month. The daily-trigger-with-gate shape is deliberate:
// the gate, not the cadence, carries the monthly semantics.
type Monthly struct{}

func (Monthly) Type() string      { return "monthly" }
func (Monthly) Aliases() []string { return []string{"monthly", "everymonth"} }

func (Monthly) Partition(ts time.Time) string { return ts.Format("2006") }

func (Monthly) Register(reg domain.Registrar, job domain.Job, source domain.Source) error {
	return reg.Add("0 0 * * *", gateFirstOfMonth(job, source))
}

func gateFirstOfMonth(job domain.Job, source domain.Source) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if now().Day() != 1 {
			return nil
		}
		return job(ctx, source)
	}
}

// Weekly fires at midnight every Monday.
type Weekly struct{}

func (Weekly) Type() string      { return "weekly" }
func (Weekly) Aliases() []string { return []string{"weekly"} }

func (Weekly) Partition(ts time.Time) string { return ts.Format("2006") }

func (Weekly) Register(reg domain.Registrar, job domain.Job, source domain.Source) error {
	return reg.Add("0 0 * * 1", bind(job, source))
}

// Daily fires at midnight every day.
type Daily struct{}

func (Daily) Type() string      { return "daily" }
func (Daily) Aliases() []string { return []string{"daily", "everyday"} }

func (Daily) Partition(ts time.Time) string { return ts.Format("2006/01") }

func (Daily) Register(reg domain.Registrar, job domain.Job, source domain.Source) error {
	return reg.Add("0 0 * * *", bind(job, source))
}

// Hourly fires at minute zero of every hour.
type Hourly struct{}

func (Hourly) Type() string      { return "hourly" }
func (Hourly) Aliases() []string { return []string{"hourly", "hour"} }

func (Hourly) Partition(ts time.Time) string { return ts.Format("2006/01/02") }

func (Hourly) Register(reg domain.Registrar, job domain.Job, source domain.Source) error {
	return reg.Add("0 * * * *", bind(job, source))
}

// FiveMinutes fires twelve times per hour, at every five-minute offset.
type FiveMinutes struct{}

func (FiveMinutes) Type() string { return "five_minutes" }

func (FiveMinutes) Aliases() []string {
	return []string{"5 minutes", "5 mins", "five minutes", "five mins"}
}

func (FiveMinutes) Partition(ts time.Time) string { return ts.Format("2006/01/02") }

func (FiveMinutes) Register(reg domain.Registrar, job domain.Job, source domain.Source) error {
	for m := 0; m < 60; m += 5 {
		if err := reg.Add(fmt.Sprintf("%d * * * *", m), bind(job, source)); err != nil {
			return err
		}
	}
	return nil
}

// bind fixes the source argument explicitly rather than capturing a
// loop variable at the call site.
func bind(job domain.Job, source domain.Source) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return job(ctx, source)
	}
}
