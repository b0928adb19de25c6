package config

import (
	"fmt"
	"os"
	"time"

	"screenbalance/pkg/window"
)

// Config holds all application configuration
type Config struct {
	// Tracker configuration
	Tracker TrackerConfig `mapstructure:"tracker"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Daemon configuration
	Daemon DaemonConfig `mapstructure:"daemon"`

	// Web server configuration
	Web WebConfig `mapstructure:"web"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// TrackerConfig holds sampling and reporting behaviour
type TrackerConfig struct {
	SampleInterval time.Duration `mapstructure:"sample_interval"` // One attribution tick
	ReportInterval time.Duration `mapstructure:"report_interval"` // How often the distribution is published
	IdleThreshold  time.Duration `mapstructure:"idle_threshold"`  // Unchanged focus before the user counts as away
	IdleDetection  bool          `mapstructure:"idle_detection"`  // Enable idle gating and retroactive correction
	FocusSource    string        `mapstructure:"focus_source"`    // "window" or "pointer"
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"` // Path to SQLite error log database
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `mapstructure:"pid_file"` // Path to PID file for daemon management
	LogFile string `mapstructure:"log_file"` // Where a detached daemon writes its log
}

// WebConfig holds web server configuration
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"` // Host to bind web server to
	Port    int    `mapstructure:"port"` // Port for web server
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Tracker: TrackerConfig{
			SampleInterval: time.Second,
			ReportInterval: time.Second,
			IdleThreshold:  120 * time.Second,
			IdleDetection:  true,
			FocusSource:    string(window.FocusWindow),
		},
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/screenbalance/screenbalance.db
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/screenbalance-%d.pid", os.Getuid()),
			LogFile: fmt.Sprintf("/tmp/screenbalance-%d.log", os.Getuid()),
		},
		Web: WebConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    10000 + os.Getuid()%50000, // Per-user default port
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.SampleInterval <= 0 {
		return fmt.Errorf("sample interval must be positive, got %v", c.Tracker.SampleInterval)
	}

	if c.Tracker.ReportInterval <= 0 {
		return fmt.Errorf("report interval must be positive, got %v", c.Tracker.ReportInterval)
	}

	if c.Tracker.IdleThreshold < c.Tracker.SampleInterval {
		return fmt.Errorf("idle threshold (%v) cannot be less than sample interval (%v)",
			c.Tracker.IdleThreshold, c.Tracker.SampleInterval)
	}

	if !window.FocusSource(c.Tracker.FocusSource).Valid() {
		return fmt.Errorf("focus source must be %q or %q, got %q",
			window.FocusWindow, window.FocusPointer, c.Tracker.FocusSource)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	return nil
}

// SetSampleInterval sets the sample interval with validation
func (c *Config) SetSampleInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("sample interval must be positive")
	}
	if interval > c.Tracker.IdleThreshold {
		return fmt.Errorf("sample interval cannot be greater than idle threshold %v", c.Tracker.IdleThreshold)
	}
	c.Tracker.SampleInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// Source returns the configured focus proxy
func (c *Config) Source() window.FocusSource {
	return window.FocusSource(c.Tracker.FocusSource)
}

// IdleCorrectionTicks is the number of ticks credited during one idle
// threshold, removed retroactively when idleness is detected.
func (c *Config) IdleCorrectionTicks() int64 {
	return int64(c.Tracker.IdleThreshold / c.Tracker.SampleInterval)
}

// QueryTimeout bounds one environment query so a hung display server costs
// at most half a tick
func (c *Config) QueryTimeout() time.Duration {
	return c.Tracker.SampleInterval / 2
}

// WebAddress returns host:port for the web server
func (c *Config) WebAddress() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Tracker:
    Sample Interval: %v
    Report Interval: %v
    Idle Threshold: %v
    Idle Detection: %v
    Focus Source: %s
  Database:
    Path: %s
  Daemon:
    PID File: %s
    Log File: %s
  Web:
    Enabled: %v
    Host: %s
    Port: %d
  Logging:
    Level: %s
    Format: %s`,
		c.Tracker.SampleInterval,
		c.Tracker.ReportInterval,
		c.Tracker.IdleThreshold,
		c.Tracker.IdleDetection,
		c.Tracker.FocusSource,
		c.Database.Path,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Web.Enabled,
		c.Web.Host,
		c.Web.Port,
		c.Logging.Level,
		c.Logging.Format,
	)
}
