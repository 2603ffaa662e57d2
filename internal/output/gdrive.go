package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/spangle/simplebackup/internal/config"
)

// GDrive delivers artifacts into a Google Drive folder.
type GDrive struct {
	service  *drive.Service
	folderID string
}

func NewGDrive(cfg *config.OutputConfig) (*GDrive, error) {
	service, err := drive.NewService(context.Background(),
		option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GDrive{
		service:  service,
		folderID: cfg.FolderID,
	}, nil
}

func (g *GDrive) Type() string { return "gdrive" }

func (g *GDrive) Send(ctx context.Context, artifactPath string) error {
	file, err := os.Open(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	metadata := &drive.File{
		Name:    filepath.ToSlash(artifactPath),
		Parents: []string{g.folderID},
	}

	_, err = g.service.Files.Create(metadata).
		Media(file).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to upload to gdrive: %w", err)
	}

	return nil
}
