package domain

import (
	"context"
	"time"
)

// Job is a backup callback bound to a source by a schedule.
type Job func(ctx context.Context, source Source) error

// Registrar accepts recurring triggers described by standard cron specs.
// The trigger engine implements it; schedules only know how to describe
// their own cadence against it.
type Registrar interface {
	Add(spec string, run func(ctx context.Context) error) error
}

// Schedule is an immutable cadence policy. It controls both when a
// source's job fires and which partition subdirectory its artifacts
// land in.
type Schedule interface {
	// Type is the canonical tag, used for logging and metrics labels.
	Type() string

	// Aliases are the recognized configuration names, matched
	// case-insensitively by the registry.
	Aliases() []string

	// Partition computes the relative storage subdirectory for a
	// backup taken at the given timestamp.
	Partition(timestamp time.Time) string

	// Register arranges for job(source) to fire on this policy's
	// cadence. Manual-only policies register nothing.
	Register(reg Registrar, job Job, source Source) error
}
