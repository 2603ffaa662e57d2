package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Sources []SourceConfig `mapstructure:"sources"`
	Outputs []OutputConfig `mapstructure:"outputs"`

	HeartbeatURL   string `mapstructure:"heartbeat_url"`
	HeartbeatID    string `mapstructure:"heartbeat_id"`
	PrometheusPort int    `mapstructure:"prometheus_port"`

	BackupDir string `mapstructure:"backup_dir"`
	LogLevel  string `mapstructure:"log_level"`
	LogFile   string `mapstructure:"log_file"`
}

type SourceConfig struct {
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`
	Schedule string `mapstructure:"schedule"`

	// file, directory, sqlite, remote_directory
	Path string `mapstructure:"path"`

	// remote_directory, mysql
	Host string `mapstructure:"host"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`

	// mysql
	DBName            string `mapstructure:"db_name"`
	IgnoreColumnStats bool   `mapstructure:"ignore_column_stats"`

	// dailys
	DailysURL string `mapstructure:"dailys_url"`
	AuthKey   string `mapstructure:"auth_key"`
}

type OutputConfig struct {
	Type string `mapstructure:"type"`

	// s3
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`

	// gdrive
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`

	// telegram
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("prometheus_port", 8366)
	v.SetDefault("backup_dir", "backups")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/backups.log")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source configuration is required")
	}

	// Names key path construction and run-by-name lookup, so a
	// duplicate is a configuration error even though nothing would
	// crash outright.
	seen := make(map[string]bool, len(c.Sources))
	for i, source := range c.Sources {
		if source.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if seen[source.Name] {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, source.Name)
		}
		seen[source.Name] = true
	}

	if c.HeartbeatURL == "" {
		return fmt.Errorf("heartbeat_url is required")
	}
	if c.HeartbeatID == "" {
		return fmt.Errorf("heartbeat_id is required")
	}

	return nil
}
