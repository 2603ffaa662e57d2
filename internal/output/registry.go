package output

import (
	"strings"

	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/domain"
)

// Constructor builds one output from its config.
type Constructor func(cfg *config.OutputConfig) (domain.Output, error)

// Registry maps configured output type tags to constructors, mirroring
// the source registry: duplicate tags fail at construction, unknown
// tags fail at lookup.
type Registry struct {
	byType map[string]Constructor
}

func NewRegistry() (*Registry, error) {
	r := &Registry{byType: make(map[string]Constructor)}
	for _, variant := range []struct {
		tag  string
		ctor Constructor
	}{
		{"s3", func(cfg *config.OutputConfig) (domain.Output, error) { return NewS3(cfg) }},
		{"gdrive", func(cfg *config.OutputConfig) (domain.Output, error) { return NewGDrive(cfg) }},
		{"telegram", func(cfg *config.OutputConfig) (domain.Output, error) { return NewTelegram(cfg) }},
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
		return domain.ConfigErrorf("output type %q is already registered", tag)
	}
	r.byType[key] = ctor
	return nil
}

// Construct builds the configured output.
func (r *Registry) Construct(cfg config.OutputConfig) (domain.Output, error) {
	if cfg.Type == "" {
		return nil, domain.MissingKeyError("output", "type")
	}
	ctor, ok := r.byType[strings.ToLower(cfg.Type)]
	if !ok {
		return nil, domain.ConfigErrorf("%q is not a valid output type", cfg.Type)
	}
	return ctor(&cfg)
}
