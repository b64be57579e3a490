package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/discovery"
	"github.com/cuemby/localstor/pkg/router"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when --config is not given and the file exists
const DefaultPath = "/etc/localstor/localstor.yaml"

// Config holds the settings of the localstor CLI and daemon
type Config struct {
	URI         string        `yaml:"uri"`
	Password    string        `yaml:"password,omitempty"`
	Timeout     time.Duration `yaml:"timeout"`
	Log         LogConfig     `yaml:"log"`
	MetricsAddr string        `yaml:"metrics_addr,omitempty"`

	// Simulate lists backends served by the simulator instead of hardware
	Simulate []string `yaml:"simulate,omitempty"`
	DataDir  string   `yaml:"data_dir"`
}

// LogConfig defines logging output
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		URI:     "local://",
		Timeout: router.DefaultTimeout,
		Log: LogConfig{
			Level: "info",
		},
		MetricsAddr: "127.0.0.1:9180",
		DataDir:     "/var/lib/localstor",
	}
}

// Load reads the YAML file at path over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("uri is required")
	}
	if !strings.Contains(c.URI, "://") {
		return fmt.Errorf("uri must look like local://[?params], got %q", c.URI)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return fmt.Errorf("metrics_addr: %w", err)
		}
	}

	catalog := discovery.DefaultCatalog()
	seen := make(map[string]bool)
	for i, id := range c.Simulate {
		if !catalog.Contains(backend.ID(id)) {
			return fmt.Errorf("simulate[%d]: unknown backend %q", i, id)
		}
		if seen[id] {
			return fmt.Errorf("simulate[%d]: duplicate backend %q", i, id)
		}
		seen[id] = true
	}
	if len(c.Simulate) > 0 && c.DataDir == "" {
		return fmt.Errorf("data_dir is required when simulate is set")
	}

	return nil
}

// SimulatedBackends returns Simulate as backend ids
func (c *Config) SimulatedBackends() []backend.ID {
	ids := make([]backend.ID, 0, len(c.Simulate))
	for _, s := range c.Simulate {
		ids = append(ids, backend.ID(s))
	}
	return ids
}
