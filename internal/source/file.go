package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/domain"
)

// File copies a single file, preserving its extension on the artifact.
type File struct {
	base
	path string
}

func newFile(cfg config.SourceConfig, schedule domain.Schedule, baseDir string) (domain.Source, error) {
	if cfg.Path == "" {
		return nil, domain.MissingKeyError("file", "path")
	}
	return &File{
		base: base{name: cfg.Name, schedule: schedule, baseDir: baseDir},
		path: cfg.Path,
	}, nil
}

func (f *File) Type() string { return "file" }

func (f *File) Backup(ctx context.Context, timestamp time.Time) (string, error) {
	parts := strings.Split(f.path, ".")
	ext := parts[len(parts)-1]

	outputPath, err := f.outputPath(timestamp, ext)
	if err != nil {
		return "", err
	}

	source, err := os.Open(f.path)
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer source.Close()

	dest, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, source); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", f.path, err)
	}

	return outputPath, nil
}
