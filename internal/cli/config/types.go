// Package config provides configuration management for the pbconsole CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	BackendURL  string `koanf:"backend_url"`
	SystemsFile string `koanf:"systems_file"`
	LogFormat   string `koanf:"log_format"`
	Verbose     bool   `koanf:"verbose"`
	Output      string `koanf:"output"`

	UI        UIConfig        `koanf:"ui"`
	Poll      PollConfig      `koanf:"poll"`
	Highlight HighlightConfig `koanf:"highlight"`
	Mock      MockConfig      `koanf:"mock"`
}

// UIConfig holds configuration for the web console.
type UIConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
	Username      string `koanf:"username"`
	Password      string `koanf:"password"`
}

// PollConfig holds dashboard polling timings.
type PollConfig struct {
	Interval    time.Duration `koanf:"interval"`
	SettleDelay time.Duration `koanf:"settle_delay"`
}

// HighlightConfig holds the changed-step highlight settings.
type HighlightConfig struct {
	Duration time.Duration `koanf:"duration"`
}

// MockConfig holds configuration for the development backend.
type MockConfig struct {
	Port             int           `koanf:"port"`
	Database         string        `koanf:"database"`
	SimulateInterval time.Duration `koanf:"simulate_interval"`
}

// Default configuration values.
const (
	DefaultBackendURL    = "http://localhost:3000"
	DefaultSystemsFile   = "systems.yaml"
	DefaultLogFormat     = "text"
	DefaultOutput        = "auto" // TTY=text, non-TTY=json
	DefaultUIPort        = 8080
	DefaultSessionSecret = "pbconsole-dev-secret-change-in-production" //nolint:gosec
	DefaultUsername      = "admin"
	DefaultPassword      = "admin" //nolint:gosec
	DefaultMockPort      = 3000
	DefaultMockDatabase  = ".pbconsole/backend.db"
)

// Default timings.
const (
	DefaultPollInterval      = 10 * time.Second
	DefaultSettleDelay       = 3 * time.Second
	DefaultHighlightDuration = 2 * time.Second
)

// defaults is the lowest configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"backend_url":            DefaultBackendURL,
		"systems_file":           DefaultSystemsFile,
		"log_format":             DefaultLogFormat,
		"verbose":                false,
		"output":                 DefaultOutput,
		"ui.port":                DefaultUIPort,
		"ui.session_secret":      DefaultSessionSecret,
		"ui.username":            DefaultUsername,
		"ui.password":            DefaultPassword,
		"poll.interval":          DefaultPollInterval,
		"poll.settle_delay":      DefaultSettleDelay,
		"highlight.duration":     DefaultHighlightDuration,
		"mock.port":              DefaultMockPort,
		"mock.database":          DefaultMockDatabase,
		"mock.simulate_interval": time.Duration(0),
	}
}
