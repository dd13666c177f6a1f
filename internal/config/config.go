// Package config handles configuration loading, validation, and hot
// reloading for remapd.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the complete daemon configuration.
//
// Hooks and withhold filters themselves are wired programmatically; the
// configuration covers the ambient settings of the engine around them.
type Config struct {
	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Devices configuration for input device discovery.
	Devices DevicesConfig `toml:"devices" json:"devices" yaml:"devices"`

	// Engine configuration for the processing pipeline.
	Engine EngineConfig `toml:"engine" json:"engine" yaml:"engine"`
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn or error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the output format: text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is where logs go: stdout, stderr or file.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file path when Output is "file".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// DevicesConfig configures input device discovery.
type DevicesConfig struct {
	// WatchDir is the directory watched for device node hotplug.
	WatchDir string `toml:"watch_dir" json:"watch_dir" yaml:"watch_dir"`

	// WatchHotplug enables the hotplug watcher.
	WatchHotplug bool `toml:"watch_hotplug" json:"watch_hotplug" yaml:"watch_hotplug"`
}

// EngineConfig configures the processing pipeline.
type EngineConfig struct {
	// HoldWindow is the default hold window for hooks that withhold
	// events: how long a press may wait for the rest of its chord.
	// Zero disables time-based release.
	HoldWindow Duration `toml:"hold_window" json:"hold_window" yaml:"hold_window"`

	// BatchCapacity is the initial capacity of per-batch buffers.
	BatchCapacity int `toml:"batch_capacity" json:"batch_capacity" yaml:"batch_capacity"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Devices: DevicesConfig{
			WatchDir:     "/dev/input",
			WatchHotplug: true,
		},
		Engine: EngineConfig{
			HoldWindow:    Duration(500 * time.Millisecond),
			BatchCapacity: 64,
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr":
	case "file":
		if c.Logging.FilePath == "" {
			return errors.New("logging.file_path required when logging.output is \"file\"")
		}
	default:
		return fmt.Errorf("logging.output: unknown output %q", c.Logging.Output)
	}
	if c.Engine.HoldWindow < 0 {
		return errors.New("engine.hold_window must not be negative")
	}
	if c.Engine.BatchCapacity < 0 {
		return errors.New("engine.batch_capacity must not be negative")
	}
	if c.Devices.WatchHotplug && c.Devices.WatchDir == "" {
		return errors.New("devices.watch_dir required when devices.watch_hotplug is enabled")
	}
	return nil
}

// ApplyEnvOverrides overrides select settings from REMAPD_* environment
// variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("REMAPD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("REMAPD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("REMAPD_LOG_OUTPUT"); v != "" {
		c.Logging.Output = v
	}
	if v := os.Getenv("REMAPD_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("REMAPD_HOLD_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Engine.HoldWindow = Duration(d)
		}
	}
	if v := os.Getenv("REMAPD_WATCH_HOTPLUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Devices.WatchHotplug = b
		}
	}
}
