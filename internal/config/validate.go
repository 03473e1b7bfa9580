package config

import (
	"fmt"
	"time"
)

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	for i := range c.Filters {
		if _, err := c.Filters[i].ToRule(); err != nil {
			return fmt.Errorf("filter %d: %w", i+1, err)
		}
	}

	if err := validateSettings(&c.Settings); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	return nil
}

func validateSettings(s *Settings) error {
	if s.PollInterval != "" {
		d, err := time.ParseDuration(s.PollInterval)
		if err != nil {
			return fmt.Errorf("pollInterval: %w", err)
		}
		if d < 50*time.Millisecond {
			return fmt.Errorf("pollInterval too short: %s", d)
		}
	}
	if s.StartupDelay != "" {
		d, err := time.ParseDuration(s.StartupDelay)
		if err != nil {
			return fmt.Errorf("startupDelay: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("startupDelay cannot be negative: %s", d)
		}
	}
	if s.StartupAttempts < 0 {
		return fmt.Errorf("startupAttempts cannot be negative: %d", s.StartupAttempts)
	}
	for i, p := range s.LibraryPaths {
		if p == "" {
			return fmt.Errorf("libraryPaths %d: empty path", i+1)
		}
	}
	return nil
}
