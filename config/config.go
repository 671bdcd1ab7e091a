package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const fallbackTimeout = 30 * time.Second

// Config holds the CLI settings read from ~/.atelier/config.yaml.
type Config struct {
	ServerURL      string `yaml:"server_url"`
	RequestTimeout string `yaml:"request_timeout"`
	DownloadDir    string `yaml:"download_dir"`
	Workers        int    `yaml:"workers"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ServerURL:      "http://localhost:3000",
		RequestTimeout: "30s",
		DownloadDir:    filepath.Join(os.Getenv("HOME"), ".atelier", "downloads"),
		Workers:        4,
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".atelier", "config.yaml")
}

// Load reads the file at path on top of the defaults. A missing file keeps
// the defaults; environment variables win over both.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the settings to path, creating the directory when needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("ATELIER_SERVER_URL"); url != "" {
		c.ServerURL = url
	}
	if timeout := os.Getenv("ATELIER_TIMEOUT"); timeout != "" {
		c.RequestTimeout = timeout
	}
	if dir := os.Getenv("ATELIER_DOWNLOAD_DIR"); dir != "" {
		c.DownloadDir = dir
	}
	if workers := os.Getenv("ATELIER_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			c.Workers = n
		}
	}
}

// Timeout parses RequestTimeout, falling back to 30 seconds when the value
// is missing or does not parse.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return fallbackTimeout
	}
	return d
}
