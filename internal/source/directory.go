package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/domain"
)

// Directory archives a directory tree into a zip artifact.
type Directory struct {
	base
	path string
}

func newDirectory(cfg config.SourceConfig, schedule domain.Schedule, baseDir string) (domain.Source, error) {
	if cfg.Path == "" {
		return nil, domain.MissingKeyError("directory", "path")
	}
	return &Directory{
		base: base{name: cfg.Name, schedule: schedule, baseDir: baseDir},
		path: cfg.Path,
	}, nil
}

func (d *Directory) Type() string { return "directory" }

func (d *Directory) Backup(ctx context.Context, timestamp time.Time) (string, error) {
	outputPath, err := d.outputPath(timestamp, "zip")
	if err != nil {
		return "", err
	}

	archive, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer archive.Close()

	writer := zip.NewWriter(archive)
	if err := d.addTree(writer); err != nil {
		writer.Close()
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}

	return outputPath, nil
}

func (d *Directory) addTree(writer *zip.Writer) error {
	return filepath.WalkDir(d.path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(d.path, path)
		if err != nil {
			return err
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		dest, err := writer.CreateHeader(header)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(dest, file)
		return err
	})
}
