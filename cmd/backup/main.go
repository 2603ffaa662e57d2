package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spangle/simplebackup/internal/app"
	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	configPath := flag.String("config", "config.json", "path to config file")
	runOnce := flag.Bool("run-once", false, "run all backups once and exit")
	runNames := flag.String("run", "", "comma-separated source names to back up once")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logs, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer logs.Close()

	backup, err := app.New(cfg, logs)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *runOnce:
		return backup.RunAllBackups(ctx)
	case *runNames != "":
		for _, name := range strings.Split(*runNames, ",") {
			if err := backup.RunBackupByName(ctx, strings.TrimSpace(name)); err != nil {
				return err
			}
		}
		return nil
	default:
		if err := backup.SetupSchedules(); err != nil {
			return err
		}
		return backup.RunScheduler(ctx)
	}
}
