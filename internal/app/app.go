package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/domain"
	"github.com/spangle/simplebackup/internal/infrastructure/heartbeat"
	"github.com/spangle/simplebackup/internal/infrastructure/logger"
	"github.com/spangle/simplebackup/internal/infrastructure/metrics"
	"github.com/spangle/simplebackup/internal/output"
	"github.com/spangle/simplebackup/internal/schedule"
	"github.com/spangle/simplebackup/internal/source"
	"github.com/spangle/simplebackup/internal/trigger"
)

const (
	// heartbeatSpec fires liveness updates every two minutes; the
	// heartbeat application is told to expect five, so one missed tick
	// does not trip an alert.
	heartbeatSpec             = "*/2 * * * *"
	heartbeatExpectedInterval = 5 * time.Minute
)

// SimpleBackup owns the configured sources and outputs, runs backups
// end-to-end and drives the trigger engine.
type SimpleBackup struct {
	cfg       *config.Config
	logger    *logger.Logger
	sources   []domain.Source
	outputs   []domain.Output
	engine    *trigger.Engine
	heartbeat *heartbeat.Client
	now       func() time.Time
}

// New builds every configured source and output. Any construction
// error, including a failed connectivity probe, aborts startup.
func New(cfg *config.Config, log *logger.Logger) (*SimpleBackup, error) {
	schedules, err := schedule.NewRegistry()
	if err != nil {
		return nil, err
	}
	sourceRegistry, err := source.NewRegistry(cfg.BackupDir)
	if err != nil {
		return nil, err
	}
	outputRegistry, err := output.NewRegistry()
	if err != nil {
		return nil, err
	}

	metrics.Init()

	var sources []domain.Source
	for _, sourceCfg := range cfg.Sources {
		src, err := sourceRegistry.Construct(sourceCfg, schedules)
		if err != nil {
			return nil, fmt.Errorf("failed to build source %q: %w", sourceCfg.Name, err)
		}
		log.Infof("Created source %s (%s, %s)", src.Name(), src.Type(), src.Schedule().Type())
		metrics.SourceActive(src.Type(), src.Schedule().Type())
		sources = append(sources, src)
	}

	var outputs []domain.Output
	for _, outputCfg := range cfg.Outputs {
		out, err := outputRegistry.Construct(outputCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build output %q: %w", outputCfg.Type, err)
		}
		log.Infof("Created output %s", out.Type())
		metrics.OutputActive(out.Type())
		outputs = append(outputs, out)
	}

	hb := heartbeat.New(cfg.HeartbeatURL)
	if err := hb.Initialise(context.Background(), cfg.HeartbeatID, heartbeatExpectedInterval); err != nil {
		return nil, fmt.Errorf("failed to initialise heartbeat: %w", err)
	}

	log.Infof("Simple backup instance created with %d source(s) and %d output(s)",
		len(sources), len(outputs))

	return &SimpleBackup{
		cfg:       cfg,
		logger:    log,
		sources:   sources,
		outputs:   outputs,
		engine:    trigger.New(log),
		heartbeat: hb,
		now:       time.Now,
	}, nil
}

// RunBackup captures one artifact for the source and delivers it to
// every output in configuration order. A failed capture skips delivery
// entirely; a failed delivery aborts the remaining outputs.
func (s *SimpleBackup) RunBackup(ctx context.Context, src domain.Source) error {
	s.logger.Infof("Creating backup for %s", src.Name())

	captureStart := s.now()
	artifactPath, err := src.Backup(ctx, captureStart)
	if err != nil {
		return fmt.Errorf("backup failed for %s: %w", src.Name(), err)
	}
	captureTime := s.now().Sub(captureStart)
	s.logger.Infof("Backup created for %s in %.3f seconds", src.Name(), captureTime.Seconds())

	deliveryStart := s.now()
	for _, out := range s.outputs {
		s.logger.Infof("Sending backup for %s to output: %s", src.Name(), out.Type())
		if err := out.Send(ctx, artifactPath); err != nil {
			return fmt.Errorf("delivery to %s failed for %s: %w", out.Type(), src.Name(), err)
		}
	}
	deliveryTime := s.now().Sub(deliveryStart)

	total := captureTime + deliveryTime
	metrics.ObserveBackupDuration(src.Type(), total.Seconds())
	s.logger.Infof("Backup output for %s in %.3f seconds. Total: %.3fs",
		src.Name(), deliveryTime.Seconds(), total.Seconds())

	return nil
}

// RunAllBackups runs every configured source once, sequentially, in
// configuration order.
func (s *SimpleBackup) RunAllBackups(ctx context.Context) error {
	s.logger.Infof("Running all backups")
	for _, src := range s.sources {
		if err := s.RunBackup(ctx, src); err != nil {
			return err
		}
	}
	s.logger.Infof("Backups complete")
	return nil
}

// RunBackupByName runs one source looked up by exact name.
func (s *SimpleBackup) RunBackupByName(ctx context.Context, name string) error {
	for _, src := range s.sources {
		if src.Name() == name {
			return s.RunBackup(ctx, src)
		}
	}
	return fmt.Errorf("%w: %q", domain.ErrSourceNotFound, name)
}

// SetupSchedules registers every source's job with the trigger engine
// according to its schedule policy, plus the heartbeat job.
func (s *SimpleBackup) SetupSchedules() error {
	s.logger.Infof("Setting up source schedules")
	for _, src := range s.sources {
		if err := src.Schedule().Register(s.engine, s.RunBackup, src); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", src.Name(), err)
		}
	}

	s.logger.Infof("Setting up heartbeat schedule")
	return s.engine.Add(heartbeatSpec, s.SendHeartbeat)
}

// RunScheduler emits one immediate heartbeat, starts the metrics
// endpoint and blocks on the trigger loop until the context is
// cancelled.
func (s *SimpleBackup) RunScheduler(ctx context.Context) error {
	if err := s.SendHeartbeat(ctx); err != nil {
		return err
	}

	go s.serveMetrics()

	s.logger.Infof("Scheduler running with %d trigger(s)", s.engine.Len())
	return s.engine.Run(ctx)
}

// SendHeartbeat reports one liveness tick.
func (s *SimpleBackup) SendHeartbeat(ctx context.Context) error {
	s.logger.Infof("Sending heartbeat")
	return s.heartbeat.Update(ctx, s.cfg.HeartbeatID)
}

func (s *SimpleBackup) serveMetrics() {
	addr := fmt.Sprintf(":%d", s.cfg.PrometheusPort)
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	s.logger.Infof("Serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		s.logger.Errorf("Metrics endpoint failed: %v", err)
	}
}
