package config

// Config is the root configuration structure
type Config struct {
	Settings Settings       `yaml:"settings" json:"settings"`
	Filters  []FilterConfig `yaml:"filters" json:"filters"`
}

// Settings contains global application settings
type Settings struct {
	SmoothSwitch        *bool    `yaml:"smoothSwitch,omitempty" json:"smoothSwitch,omitempty"` // Default true
	StopFlashingOnApply bool     `yaml:"stopFlashingOnApply" json:"stopFlashingOnApply"`
	PollInterval        string   `yaml:"pollInterval,omitempty" json:"pollInterval,omitempty"` // e.g. "1s"
	LibraryPaths        []string `yaml:"libraryPaths,omitempty" json:"libraryPaths,omitempty"` // Extra VirtualDesktopAccessor.dll candidates
	StartupAttempts     int      `yaml:"startupAttempts,omitempty" json:"startupAttempts,omitempty"`
	StartupDelay        string   `yaml:"startupDelay,omitempty" json:"startupDelay,omitempty"`
}

// FilterConfig is the configuration representation of a filter rule
type FilterConfig struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Enabled *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"` // Default true
	Action  string `yaml:"action,omitempty" json:"action,omitempty"`   // Default "move"
	// Desktop is a one-based index (3) or a desktop id ("{GUID}")
	Desktop interface{} `yaml:"desktop,omitempty" json:"desktop,omitempty"`
	// Title and Process are a string or a list of strings
	Title        interface{}  `yaml:"title,omitempty" json:"title,omitempty"`
	Process      interface{}  `yaml:"process,omitempty" json:"process,omitempty"`
	WindowIndex  *RangeConfig `yaml:"windowIndex,omitempty" json:"windowIndex,omitempty"`
	DesktopIndex *RangeConfig `yaml:"desktopIndex,omitempty" json:"desktopIndex,omitempty"`
	StopFlashing bool         `yaml:"stopFlashing,omitempty" json:"stopFlashing,omitempty"`
}

// RangeConfig bounds a one-based index; either end may be omitted
type RangeConfig struct {
	Min *int `yaml:"min,omitempty" json:"min,omitempty"`
	Max *int `yaml:"max,omitempty" json:"max,omitempty"`
}
