package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/schedule"
)

func TestDirectorySource(t *testing.T) {
	Convey("Given a directory source", t, func() {
		tempDir, err := os.MkdirTemp("", "directory_source_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		dataDir := filepath.Join(tempDir, "data")
		So(os.MkdirAll(filepath.Join(dataDir, "nested"), 0755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dataDir, "a.txt"), []byte("alpha"), 0644), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dataDir, "nested", "b.txt"), []byte("beta"), 0644), ShouldBeNil)

		schedules, err := schedule.NewRegistry()
		So(err, ShouldBeNil)
		registry, err := NewRegistry(filepath.Join(tempDir, "backups"))
		So(err, ShouldBeNil)

		src, err := registry.Construct(config.SourceConfig{
			Name:     "website",
			Type:     "directory",
			Schedule: "hourly",
			Path:     dataDir,
		}, schedules)
		So(err, ShouldBeNil)

		Convey("When backing up", func() {
			timestamp := time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)
			artifact, err := src.Backup(context.Background(), timestamp)
			So(err, ShouldBeNil)

			Convey("The artifact is a zip on the hourly partition", func() {
				So(artifact, ShouldEndWith,
					filepath.Join("website", "2023", "06", "15", "20230615T100000.zip"))
			})

			Convey("The archive holds the full tree with relative names", func() {
				reader, err := zip.OpenReader(artifact)
				So(err, ShouldBeNil)
				defer reader.Close()

				contents := map[string]string{}
				for _, file := range reader.File {
					r, err := file.Open()
					So(err, ShouldBeNil)
					data, err := io.ReadAll(r)
					r.Close()
					So(err, ShouldBeNil)
					contents[file.Name] = string(data)
				}

				So(contents, ShouldResemble, map[string]string{
					"a.txt":        "alpha",
					"nested/b.txt": "beta",
				})
			})
		})
	})
}
