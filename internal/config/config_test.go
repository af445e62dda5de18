package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"subgen/internal/config"
	"subgen/internal/services"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SUBGEN_API_URL", "")
	t.Setenv("SUBGEN_NTFY_TOPIC", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, ".local", "share", "subgen", "subtitles")
	if cfg.Output.Dir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Output.Dir, wantOutput)
	}
	wantHistory := filepath.Join(tempHome, ".local", "share", "subgen", "history.db")
	if cfg.History.Path != wantHistory {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.Path, wantHistory)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.API.URL != "" {
		t.Fatalf("expected no default api url, got %q", cfg.API.URL)
	}
	if cfg.APITimeout() != 120*time.Second {
		t.Fatalf("unexpected api timeout: %s", cfg.APITimeout())
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected notifications disabled, got topic %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Output.Dir, filepath.Dir(cfg.History.Path)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subgen.toml")

	type payload struct {
		API struct {
			URL            string `toml:"url"`
			TimeoutSeconds int    `toml:"timeout_seconds"`
		} `toml:"api"`
		Output struct {
			Dir string `toml:"dir"`
		} `toml:"output"`
		History struct {
			Enabled bool `toml:"enabled"`
		} `toml:"history"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.API.URL = "https://api.example.com"
	custom.API.TimeoutSeconds = 0
	custom.Output.Dir = filepath.Join(tempDir, "subs")
	custom.History.Enabled = false
	custom.Logging.Format = "JSON"
	custom.Logging.Level = " Debug "
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.API.URL != "https://api.example.com" {
		t.Fatalf("expected api url from file, got %q", cfg.API.URL)
	}
	if cfg.APITimeout() != 0 {
		t.Fatalf("expected timeout disabled, got %s", cfg.APITimeout())
	}
	if cfg.Output.Dir != filepath.Join(tempDir, "subs") {
		t.Fatalf("unexpected output dir %q", cfg.Output.Dir)
	}
	if cfg.History.Enabled {
		t.Fatal("expected history disabled")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging settings, got %+v", cfg.Logging)
	}
}

func TestEnvFallbacksApplyWhenFileOmitsValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SUBGEN_API_URL", " https://env.example.com/ ")
	t.Setenv("SUBGEN_NTFY_TOPIC", "https://ntfy.sh/subgen-test")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.URL != "https://env.example.com/" {
		t.Fatalf("expected api url from env, got %q", cfg.API.URL)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/subgen-test" {
		t.Fatalf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestFileValueWinsOverEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subgen.toml")
	if err := os.WriteFile(configPath, []byte("[api]\nurl = \"https://file.example.com\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SUBGEN_API_URL", "https://env.example.com")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.URL != "https://file.example.com" {
		t.Fatalf("expected file value to win, got %q", cfg.API.URL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"api scheme", func(c *config.Config) { c.API.URL = "ftp://x" }, "api.url"},
		{"api host", func(c *config.Config) { c.API.URL = "https://" }, "missing a host"},
		{"negative timeout", func(c *config.Config) { c.API.TimeoutSeconds = -1 }, "api.timeout_seconds"},
		{"ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "my-topic" }, "ntfy_topic"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation marker, got %v", err)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subgen.toml")
	if err := os.WriteFile(configPath, []byte("[api]\nendpoint = \"https://x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, _, exists, err := config.Load(target); err != nil || !exists {
		t.Fatalf("expected sample to load cleanly, exists=%v err=%v", exists, err)
	}
}

func TestExpandPathHandlesTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/subs")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "subs") {
		t.Fatalf("unexpected expansion %q", got)
	}
}
