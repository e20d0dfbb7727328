package config

import (
	"fmt"
	"net/url"
	"slices"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend_url must be an http(s) URL, got %q", c.BackendURL)
	}
	if !slices.Contains([]string{"text", "json"}, c.LogFormat) {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if !slices.Contains([]string{"auto", "text", "json"}, c.Output) {
		return fmt.Errorf("output must be auto, text or json, got %q", c.Output)
	}
	if err := validPort("ui.port", c.UI.Port); err != nil {
		return err
	}
	if err := validPort("mock.port", c.Mock.Port); err != nil {
		return err
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if c.Poll.SettleDelay < 0 {
		return fmt.Errorf("poll.settle_delay must not be negative, got %s", c.Poll.SettleDelay)
	}
	if c.Highlight.Duration <= 0 {
		return fmt.Errorf("highlight.duration must be positive, got %s", c.Highlight.Duration)
	}
	if c.Mock.SimulateInterval < 0 {
		return fmt.Errorf("mock.simulate_interval must not be negative, got %s", c.Mock.SimulateInterval)
	}
	return nil
}

// ValidateUI checks the settings only the web console needs.
func (c *Config) ValidateUI() error {
	if c.UI.SessionSecret == "" {
		return fmt.Errorf("ui.session_secret is required")
	}
	if c.UI.Username == "" || c.UI.Password == "" {
		return fmt.Errorf("ui.username and ui.password are required")
	}
	return nil
}

func validPort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", key, port)
	}
	return nil
}
