package source

import (
	"strings"

	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/domain"
	"github.com/spangle/simplebackup/internal/schedule"
)

// Constructor builds one source from its config, with the schedule
// already resolved.
type Constructor func(cfg config.SourceConfig, sched domain.Schedule, baseDir string) (domain.Source, error)

// Registry maps configured source type tags to constructors. Built once
// at startup; a duplicate tag fails construction immediately.
type Registry struct {
	byType  map[string]Constructor
	baseDir string
}

func NewRegistry(baseDir string) (*Registry, error) {
	r := &Registry{byType: make(map[string]Constructor), baseDir: baseDir}
	for _, variant := range []struct {
		tag  string
		ctor Constructor
	}{
		{"file", newFile},
		{"directory", newDirectory},
		{"sqlite", newSqlite},
		{"remote_directory", newRemoteDirectory},
		{"dailys", newDailys},
		{"mysql", newMySQL},
	} {
		if err := r.register(variant.tag, variant.ctor); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(tag string, ctor Constructor) error {
	key := strings.ToLower(tag)
	if _, ok := r.byType[key]; ok {
		return domain.ConfigErrorf("source type %q is already registered", tag)
	}
	r.byType[key] = ctor
	return nil
}

// Construct resolves the schedule and builds the configured source.
func (r *Registry) Construct(cfg config.SourceConfig, schedules *schedule.Registry) (domain.Source, error) {
	if cfg.Type == "" {
		return nil, domain.MissingKeyError("source", "type")
	}
	ctor, ok := r.byType[strings.ToLower(cfg.Type)]
	if !ok {
		return nil, domain.ConfigErrorf("%q is not a valid source type", cfg.Type)
	}

	if cfg.Name == "" {
		return nil, domain.MissingKeyError(cfg.Type, "name")
	}
	if cfg.Schedule == "" {
		return nil, domain.MissingKeyError(cfg.Type, "schedule")
	}

	sched, err := schedules.Lookup(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	return ctor(cfg, sched, r.baseDir)
}
