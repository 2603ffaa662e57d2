package source

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spangle/simplebackup/internal/domain"
)

// timestampLayout names artifacts; it is also embedded in the remote
// temp filenames the SSH source creates.
const timestampLayout = "20060102T150405"

// base carries the attributes every source shares and computes artifact
// paths under <baseDir>/<name>/<schedule partition>/.
type base struct {
	name     string
	schedule domain.Schedule
	baseDir  string
}

func (b base) Name() string              { return b.name }
func (b base) Schedule() domain.Schedule { return b.schedule }

// outputPath computes the artifact path for a capture timestamp,
// creating the partition directory on demand.
func (b base) outputPath(timestamp time.Time, ext string) (string, error) {
	dir := filepath.Join(b.baseDir, b.name, filepath.FromSlash(b.schedule.Partition(timestamp)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory %s: %w", dir, err)
	}
	filename := fmt.Sprintf("%s.%s", timestamp.Format(timestampLayout), ext)
	return filepath.Join(dir, filename), nil
}
