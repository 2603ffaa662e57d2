package schedule

import (
	"strings"

	"github.com/spangle/simplebackup/internal/domain"
)

// Registry resolves configured cadence names to schedule policies,
// case-insensitively. Built once at startup and read-only afterwards.
type Registry struct {
	byAlias map[string]domain.Schedule
}

// NewRegistry builds the registry over all supported policies. A
// duplicate alias across two policies is a configuration error raised
// here, not at lookup time.
func NewRegistry() (*Registry, error) {
	return newRegistry(Once{}, Monthly{}, Weekly{}, Daily{}, Hourly{}, FiveMinutes{})
}

func newRegistry(policies ...domain.Schedule) (*Registry, error) {
	r := &Registry{byAlias: make(map[string]domain.Schedule)}
	for _, policy := range policies {
		for _, alias := range policy.Aliases() {
			key := strings.ToLower(alias)
			if existing, ok := r.byAlias[key]; ok {
				return nil, domain.ConfigErrorf(
					"cannot register %s schedule: alias %q is already used by %s",
					policy.Type(), alias, existing.Type())
			}
			r.byAlias[key] = policy
		}
	}
	return r, nil
}

// Lookup resolves a configured schedule name.
func (r *Registry) Lookup(name string) (domain.Schedule, error) {
	policy, ok := r.byAlias[strings.ToLower(name)]
	if !ok {
		return nil, domain.ConfigErrorf("%q is not a valid schedule", name)
	}
	return policy, nil
}
