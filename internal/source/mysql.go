package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/domain"
)

// MySQL dumps a database with the mysqldump utility, writing its stdout
// straight to the artifact path.
type MySQL struct {
	base
	host              string
	user              string
	password          string
	dbName            string
	ignoreColumnStats bool
}

func newMySQL(cfg config.SourceConfig, schedule domain.Schedule, baseDir string) (domain.Source, error) {
	for key, value := range map[string]string{
		"user":    cfg.User,
		"pass":    cfg.Pass,
		"db_name": cfg.DBName,
	} {
		if value == "" {
			return nil, domain.MissingKeyError("mysql", key)
		}
	}

	return &MySQL{
		base:              base{name: cfg.Name, schedule: schedule, baseDir: baseDir},
		host:              cfg.Host,
		user:              cfg.User,
		password:          cfg.Pass,
		dbName:            cfg.DBName,
		ignoreColumnStats: cfg.IgnoreColumnStats,
	}, nil
}

func (m *MySQL) Type() string { return "mysql" }

func (m *MySQL) Backup(ctx context.Context, timestamp time.Time) (string, error) {
	outputPath, err := m.outputPath(timestamp, "sql")
	if err != nil {
		return "", err
	}

	args := []string{
		fmt.Sprintf("--user=%s", m.user),
		fmt.Sprintf("--password=%s", m.password),
	}
	if m.host != "" {
		args = append(args, fmt.Sprintf("--host=%s", m.host))
	}
	if m.ignoreColumnStats {
		// Servers predating the column statistics table reject the
		// default metadata dump.
		args = append(args, "--column-statistics=0")
	}
	args = append(args, m.dbName)

	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact: %w", err)
	}
	defer outFile.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "mysqldump", args...)
	cmd.Stdout = outFile
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	var execErr *exec.Error
	if errors.As(runErr, &execErr) {
		return "", fmt.Errorf("mysqldump could not be started: %w", runErr)
	}

	// A dump that exits but leaves nothing behind is its own failure
	// mode; surface everything the process said.
	info, statErr := os.Stat(outputPath)
	if statErr != nil || info.Size() == 0 {
		return "", fmt.Errorf("mysqldump produced no output for %s (exit: %v, stderr: %s)",
			m.dbName, runErr, stderr.String())
	}

	if runErr != nil {
		return "", fmt.Errorf("mysqldump failed: %w, stderr: %s", runErr, stderr.String())
	}

	return outputPath, nil
}
