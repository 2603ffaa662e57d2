package domain

import "context"

// Output durably delivers artifacts to one configured destination.
type Output interface {
	Type() string

	// Send delivers the artifact at the given local path.
	Send(ctx context.Context, artifactPath string) error
}
