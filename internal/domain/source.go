package domain

import (
	"context"
	"time"
)

// Source is one configured origin of backup data. Implementations are
// constructed once at startup and reused for every capture.
type Source interface {
	Name() string
	Type() string
	Schedule() Schedule

	// Backup captures one artifact for the given timestamp and returns
	// the path it was written to.
	Backup(ctx context.Context, timestamp time.Time) (string, error)
}
