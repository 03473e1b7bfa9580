package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/vdm-cli/internal/filter"
	"github.com/yourusername/vdm-cli/internal/vd"
)

const (
	DefaultConfigDir  = "vdm"
	DefaultConfigFile = "config.yaml"
)

// DefaultConfigYAML is written by "vdm config init"
const DefaultConfigYAML = `# vdm configuration
settings:
  smoothSwitch: true
  stopFlashingOnApply: false
  pollInterval: 1s
  # libraryPaths:
  #   - C:\tools\VirtualDesktopAccessor.dll

# Filters are checked top to bottom; the first enabled match decides.
filters:
  - name: notes
    desktop: 2
    title: Untitled - Notepad
  # - name: mail
  #   desktop: 3
  #   title: |-
  #     Inbox
  #     Gmail
  #   process: [chrome, msedge]
`

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, DefaultConfigDir), nil
}

// LoadConfig loads configuration from the specified path or default location
// If path is empty, uses <user config dir>/vdm/config.yaml, then config.json
// Supports both .yaml and .json extensions
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		// Try YAML first, then JSON
		yamlPath := filepath.Join(dir, "config.yaml")
		jsonPath := filepath.Join(dir, "config.json")

		if _, err := os.Stat(yamlPath); err == nil {
			path = yamlPath
		} else if _, err := os.Stat(jsonPath); err == nil {
			path = jsonPath
		} else {
			return nil, fmt.Errorf("no config file found at %s or %s: %w", yamlPath, jsonPath, os.ErrNotExist)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return LoadConfigFromBytes(data, ext)
}

// LoadConfigFromBytes loads configuration from raw bytes
// format should be "yaml" or "json"
func LoadConfigFromBytes(data []byte, format string) (*Config, error) {
	var cfg Config

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{}
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return DefaultConfigFile
	}
	return filepath.Join(dir, DefaultConfigFile)
}

// WriteDefault writes DefaultConfigYAML to path unless a file exists there
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(DefaultConfigYAML), 0644)
}

// Rules converts the filters to rules, in order
func (c *Config) Rules() ([]filter.Rule, error) {
	rules := make([]filter.Rule, len(c.Filters))
	for i := range c.Filters {
		r, err := c.Filters[i].ToRule()
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i+1, err)
		}
		rules[i] = r
	}
	return rules, nil
}

// SmoothSwitchEnabled reports whether user switches animate
// Returns true if not configured
func (c *Config) SmoothSwitchEnabled() bool {
	return c.Settings.SmoothSwitch == nil || *c.Settings.SmoothSwitch
}

// GetPollInterval returns the watcher polling period
// Returns 1s if not configured
func (c *Config) GetPollInterval() time.Duration {
	if d, err := time.ParseDuration(c.Settings.PollInterval); err == nil && d > 0 {
		return d
	}
	return time.Second
}

// GetStartupRetry returns the retry policy for startup queries
func (c *Config) GetStartupRetry() vd.RetryConfig {
	rc := vd.DefaultRetryConfig()
	if c.Settings.StartupAttempts > 0 {
		rc.MaxAttempts = c.Settings.StartupAttempts
	}
	if d, err := time.ParseDuration(c.Settings.StartupDelay); err == nil {
		rc.Delay = d
	}
	return rc
}
