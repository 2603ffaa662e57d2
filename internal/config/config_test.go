package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	Convey("Given a config file", t, func() {
		tempDir, err := os.MkdirTemp("", "config_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		Convey("When loading a valid document", func() {
			path := writeConfig(t, tempDir, `{
				"sources": [
					{"type": "file", "name": "notes", "schedule": "daily", "path": "notes.txt"}
				],
				"outputs": [
					{"type": "s3", "region": "eu-west-1", "bucket": "backups"}
				],
				"heartbeat_url": "https://heartbeat.example.com",
				"heartbeat_id": "simplebackup"
			}`)

			cfg, err := Load(path)

			Convey("It should load with defaults applied", func() {
				So(err, ShouldBeNil)
				So(len(cfg.Sources), ShouldEqual, 1)
				So(cfg.Sources[0].Name, ShouldEqual, "notes")
				So(cfg.Sources[0].Schedule, ShouldEqual, "daily")
				So(len(cfg.Outputs), ShouldEqual, 1)
				So(cfg.Outputs[0].Bucket, ShouldEqual, "backups")
				So(cfg.PrometheusPort, ShouldEqual, 8366)
				So(cfg.BackupDir, ShouldEqual, "backups")
				So(cfg.LogLevel, ShouldEqual, "info")
			})
		})

		Convey("When the document has no sources", func() {
			path := writeConfig(t, tempDir, `{
				"sources": [],
				"heartbeat_url": "https://heartbeat.example.com",
				"heartbeat_id": "simplebackup"
			}`)

			_, err := Load(path)

			Convey("It should fail validation", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "at least one source")
			})
		})

		Convey("When two sources share a name", func() {
			path := writeConfig(t, tempDir, `{
				"sources": [
					{"type": "file", "name": "notes", "schedule": "daily", "path": "a.txt"},
					{"type": "file", "name": "notes", "schedule": "hourly", "path": "b.txt"}
				],
				"heartbeat_url": "https://heartbeat.example.com",
				"heartbeat_id": "simplebackup"
			}`)

			_, err := Load(path)

			Convey("It should fail validation", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "duplicate source name")
			})
		})

		Convey("When the heartbeat settings are missing", func() {
			path := writeConfig(t, tempDir, `{
				"sources": [
					{"type": "file", "name": "notes", "schedule": "daily", "path": "notes.txt"}
				]
			}`)

			_, err := Load(path)

			Convey("It should fail validation", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "heartbeat_url")
			})
		})

		Convey("When the file does not exist", func() {
			_, err := Load(filepath.Join(tempDir, "missing.json"))

			Convey("It should return a read error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
