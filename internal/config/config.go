// Package config loads driftpad configuration from file, environment and
// defaults, in that order of increasing precedence for the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	// DataDir is where driftpad keeps its state. Default: ~/.driftpad
	DataDir string `mapstructure:"data_dir"`

	// RemoteURL is the remote authority's libsql URL
	// (libsql://host?authToken=..., or file:path for local testing).
	RemoteURL string `mapstructure:"remote_url"`

	// SyncInterval is the periodic reconciliation cadence.
	SyncInterval time.Duration `mapstructure:"sync_interval"`

	// PingTimeout bounds the connectivity probe before each pass.
	PingTimeout time.Duration `mapstructure:"ping_timeout"`

	// DebounceDelay is the edit coalescer's quiet period.
	DebounceDelay time.Duration `mapstructure:"debounce_delay"`

	// DashboardPort is the status WebSocket server port in daemon mode
	// (0 disables the dashboard).
	DashboardPort int `mapstructure:"dashboard_port"`

	// LogFile, when set, routes daemon logs to a rotating file instead
	// of stderr.
	LogFile string `mapstructure:"log_file"`

	// LogMaxSizeMB caps the log file size before rotation.
	LogMaxSizeMB int `mapstructure:"log_max_size_mb"`

	// LogMaxBackups caps how many rotated log files are kept.
	LogMaxBackups int `mapstructure:"log_max_backups"`
}

// StorePath returns the local note database path.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "notes.db")
}

// DraftsDir returns the watched drafts directory.
func (c *Config) DraftsDir() string {
	return filepath.Join(c.DataDir, "drafts")
}

// Load reads configuration from ~/.driftpad/config.yaml (or the file
// named in DRIFTPAD_CONFIG), environment variables prefixed DRIFTPAD_,
// and built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".driftpad")

	v.SetDefault("data_dir", dataDir)
	v.SetDefault("remote_url", "")
	v.SetDefault("sync_interval", 30*time.Second)
	v.SetDefault("ping_timeout", 3*time.Second)
	v.SetDefault("debounce_delay", 750*time.Millisecond)
	v.SetDefault("dashboard_port", 0)
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 10)
	v.SetDefault("log_max_backups", 3)

	v.SetEnvPrefix("DRIFTPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("DRIFTPAD_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dataDir)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env carry it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
