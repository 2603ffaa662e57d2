package source

import (
	"context"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/domain"
)

// Sqlite copies a database page by page through the engine's online
// backup API, so the artifact is consistent even against a live,
// concurrently-written source. A raw file copy would not be.
type Sqlite struct {
	base
	dbPath string
}

func newSqlite(cfg config.SourceConfig, schedule domain.Schedule, baseDir string) (domain.Source, error) {
	if cfg.Path == "" {
		return nil, domain.MissingKeyError("sqlite", "path")
	}
	return &Sqlite{
		base:   base{name: cfg.Name, schedule: schedule, baseDir: baseDir},
		dbPath: cfg.Path,
	}, nil
}

func (s *Sqlite) Type() string { return "sqlite" }

func (s *Sqlite) Backup(ctx context.Context, timestamp time.Time) (string, error) {
	outputPath, err := s.outputPath(timestamp, "sq3")
	if err != nil {
		return "", err
	}

	driver := &sqlite3.SQLiteDriver{}

	srcConn, err := driver.Open(fmt.Sprintf("file:%s?mode=ro", s.dbPath))
	if err != nil {
		return "", fmt.Errorf("failed to open source database: %w", err)
	}
	defer srcConn.Close()

	destConn, err := driver.Open(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup database: %w", err)
	}
	defer destConn.Close()

	backup, err := destConn.(*sqlite3.SQLiteConn).Backup("main", srcConn.(*sqlite3.SQLiteConn), "main")
	if err != nil {
		return "", fmt.Errorf("failed to start online backup: %w", err)
	}

	for {
		done, err := backup.Step(1)
		if err != nil {
			backup.Finish()
			return "", fmt.Errorf("online backup step failed: %w", err)
		}
		if done {
			break
		}
	}

	if err := backup.Finish(); err != nil {
		return "", fmt.Errorf("failed to finish online backup: %w", err)
	}

	return outputPath, nil
}
