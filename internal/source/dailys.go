package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spangle/simplebackup/internal/config"
	"github.com/spangle/simplebackup/internal/domain"
)

// Dailys captures every stat exposed by a dailys HTTP API into one JSON
// document: the listing endpoint names the stats, a per-stat endpoint
// serves each one's data.
type Dailys struct {
	base
	url     string
	authKey string
	client  *http.Client
}

func newDailys(cfg config.SourceConfig, schedule domain.Schedule, baseDir string) (domain.Source, error) {
	if cfg.DailysURL == "" {
		return nil, domain.MissingKeyError("dailys", "dailys_url")
	}
	if cfg.AuthKey == "" {
		return nil, domain.MissingKeyError("dailys", "auth_key")
	}

	d := &Dailys{
		base:    base{name: cfg.Name, schedule: schedule, baseDir: baseDir},
		url:     strings.TrimRight(cfg.DailysURL, "/"),
		authKey: cfg.AuthKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}

	if err := d.testConnection(); err != nil {
		return nil, &domain.SourceUnreachableError{Source: cfg.Name, Err: err}
	}

	return d, nil
}

func (d *Dailys) Type() string { return "dailys" }

// testConnection probes the authenticated listing endpoint.
func (d *Dailys) testConnection() error {
	var names []string
	return d.getJSON(context.Background(), d.url+"/stats/", &names)
}

func (d *Dailys) Backup(ctx context.Context, timestamp time.Time) (string, error) {
	outputPath, err := d.outputPath(timestamp, "json")
	if err != nil {
		return "", err
	}

	var statNames []string
	if err := d.getJSON(ctx, d.url+"/stats/", &statNames); err != nil {
		return "", fmt.Errorf("failed to list stats: %w", err)
	}

	data := make(map[string]json.RawMessage, len(statNames))
	for _, statName := range statNames {
		var statData json.RawMessage
		if err := d.getJSON(ctx, fmt.Sprintf("%s/stats/%s/", d.url, statName), &statData); err != nil {
			return "", fmt.Errorf("failed to fetch stat %s: %w", statName, err)
		}
		data[statName] = statData
	}

	document, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to serialize stats: %w", err)
	}
	if err := os.WriteFile(outputPath, document, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	return outputPath, nil
}

func (d *Dailys) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", d.authKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}
