package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "remapd.toml", `
[logging]
level = "debug"
format = "json"

[engine]
hold_window = "250ms"
batch_capacity = 16

[devices]
watch_dir = "/dev/input"
watch_hotplug = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging not decoded: %+v", cfg.Logging)
	}
	if cfg.Engine.HoldWindow.Duration() != 250*time.Millisecond {
		t.Errorf("hold_window = %v, want 250ms", cfg.Engine.HoldWindow)
	}
	if cfg.Engine.BatchCapacity != 16 {
		t.Errorf("batch_capacity = %d, want 16", cfg.Engine.BatchCapacity)
	}
	if cfg.Devices.WatchHotplug {
		t.Error("watch_hotplug should be false")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "remapd.yaml", `
logging:
  level: warn
engine:
  hold_window: 1s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Engine.HoldWindow.Duration() != time.Second {
		t.Errorf("hold_window = %v, want 1s", cfg.Engine.HoldWindow)
	}
	// Untouched sections keep their defaults.
	if cfg.Devices.WatchDir != "/dev/input" {
		t.Errorf("watch_dir = %q, want default", cfg.Devices.WatchDir)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeConfig(t, "remapd.ini", "level=debug")
	if _, err := Load(path); err == nil {
		t.Error("unknown extension should fail")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad output", func(c *Config) { c.Logging.Output = "syslog" }},
		{"file output without path", func(c *Config) { c.Logging.Output = "file" }},
		{"negative hold window", func(c *Config) { c.Engine.HoldWindow = Duration(-time.Second) }},
		{"hotplug without dir", func(c *Config) { c.Devices.WatchDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REMAPD_LOG_LEVEL", "error")
	t.Setenv("REMAPD_HOLD_WINDOW", "2s")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Logging.Level != "error" {
		t.Errorf("level = %q, want error", cfg.Logging.Level)
	}
	if cfg.Engine.HoldWindow.Duration() != 2*time.Second {
		t.Errorf("hold_window = %v, want 2s", cfg.Engine.HoldWindow)
	}
}

func TestLoaderReloadsOnChange(t *testing.T) {
	path := writeConfig(t, "remapd.toml", "[logging]\nlevel = \"info\"\n")

	l := NewLoader(path)
	if _, err := l.Load(); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	defer l.Close()

	changed := make(chan *Config, 1)
	l.OnChange(func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	if err := l.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.Logging.Level != "debug" {
			t.Errorf("reloaded level = %q, want debug", cfg.Logging.Level)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestLoaderKeepsPreviousConfigOnBadReload(t *testing.T) {
	path := writeConfig(t, "remapd.toml", "[logging]\nlevel = \"info\"\n")

	l := NewLoader(path)
	if _, err := l.Load(); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	defer l.Close()
	if err := l.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	// Give the watcher a moment; the invalid file must not replace the
	// cached config.
	time.Sleep(200 * time.Millisecond)
	if got := l.Config().Logging.Level; got != "info" {
		t.Errorf("level = %q, want the previous value", got)
	}
}
