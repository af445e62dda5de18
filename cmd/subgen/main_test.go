package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"subgen/internal/config"
	"subgen/internal/subtitleapi"
	"subgen/internal/testsupport"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:03,000 --> 00:00:04,000\nWorld\n"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	server     *testsupport.SubtitleServer
}

func setupCLITestEnv(t *testing.T, respond func(http.ResponseWriter, subtitleapi.VideoRequest)) *cliTestEnv {
	t.Helper()
	t.Setenv("SUBGEN_API_URL", "")
	t.Setenv("SUBGEN_NTFY_TOPIC", "")
	t.Setenv("HOME", t.TempDir())

	server := testsupport.NewSubtitleServer(t, respond)
	cfg := testsupport.NewConfig(t, testsupport.WithAPIURL(server.URL))
	cfg.Logging.Level = "error"

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, server: server}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}

func TestGenerateSavesFileAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.ServeSRT(sampleSRT))

	out, _, err := runCLI(t, []string{"generate", "https://videos.example/watch?v=1"}, env.configPath)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, out, "Subtitle saved: ")
	requireContains(t, out, "Cues:")

	reqs := env.server.Requests()
	if len(reqs) != 1 || reqs[0].URL != "https://videos.example/watch?v=1" {
		t.Fatalf("unexpected requests: %+v", reqs)
	}

	matches, err := filepath.Glob(filepath.Join(env.cfg.Output.Dir, "subtitle_*.srt"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one srt file, got %v (err %v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if string(data) != sampleSRT {
		t.Fatalf("file content mismatch: %q", data)
	}

	store := testsupport.MustOpenHistory(t, env.cfg)
	entries, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Status != "success" || entry.OutputPath != matches[0] || entry.CueCount != 2 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestGenerateStdoutPrintsContent(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.ServeSRT(sampleSRT))

	out, _, err := runCLI(t, []string{"generate", "--stdout", "--video-url", "http://videos.example/2"}, env.configPath)
	if err != nil {
		t.Fatalf("generate --stdout: %v", err)
	}
	if out != sampleSRT {
		t.Fatalf("stdout = %q, want verbatim content", out)
	}
	matches, _ := filepath.Glob(filepath.Join(env.cfg.Output.Dir, "*.srt"))
	if len(matches) != 0 {
		t.Fatalf("expected no files written, got %v", matches)
	}
}

func TestGenerateRequiresBothFields(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.ServeSRT(sampleSRT))

	_, _, err := runCLI(t, []string{"generate"}, env.configPath)
	if err == nil || err.Error() != "Please fill all fields" {
		t.Fatalf("expected missing fields error, got %v", err)
	}
	if n := len(env.server.Requests()); n != 0 {
		t.Fatalf("expected no API calls, got %d", n)
	}
}

func TestGenerateReportsValidationAndAPIErrors(t *testing.T) {
	env := setupCLITestEnv(t, func(w http.ResponseWriter, _ subtitleapi.VideoRequest) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model offline"))
	})

	_, _, err := runCLI(t, []string{"generate", "ftp://videos.example/3"}, env.configPath)
	if err == nil || err.Error() != "Invalid Video URL format." {
		t.Fatalf("expected video URL error, got %v", err)
	}

	_, _, err = runCLI(t, []string{"generate", "--api-url", "localhost:9", "https://videos.example/3"}, env.configPath)
	if err == nil || err.Error() != "Invalid API URL format." {
		t.Fatalf("expected API URL error, got %v", err)
	}

	_, _, err = runCLI(t, []string{"generate", "https://videos.example/3"}, env.configPath)
	if err == nil || err.Error() != "API Error: 500 Internal Server Error - model offline" {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestHistoryListAndClear(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.ServeSRT(sampleSRT))

	out, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "No requests recorded")

	if _, _, err := runCLI(t, []string{"generate", "https://videos.example/4"}, env.configPath); err != nil {
		t.Fatalf("generate: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "list", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "Success")
	requireContains(t, out, "https://videos.example/4")

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 1 request(s)")
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.ServeSRT(sampleSRT))
	env.cfg.History.Enabled = false
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"generate", "https://videos.example/5"}, env.configPath); err != nil {
		t.Fatalf("generate without history: %v", err)
	}
	if _, err := os.Stat(env.cfg.History.Path); err == nil {
		t.Fatalf("history database should not be created when disabled")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.ServeSRT(sampleSRT))

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCheckReportsResults(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.ServeSRT(sampleSRT))

	out, _, err := runCLI(t, []string{"check", "--probe"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Preflight")
	requireContains(t, out, "Output directory:")
	requireContains(t, out, "Subtitle API reachability:")

	env.cfg.API.URL = ""
	writeTestConfig(t, env.configPath, env.cfg)
	if _, _, err := runCLI(t, []string{"check"}, env.configPath); err != nil {
		t.Fatalf("check with empty api url: %v", err)
	}
}

func TestTestNotifyRequiresTopic(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.ServeSRT(sampleSRT))

	_, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "ntfy_topic") {
		t.Fatalf("expected missing topic error, got %v", err)
	}
}

func TestTestNotifyPostsToTopic(t *testing.T) {
	titles := make(chan string, 1)
	ntfy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		titles <- r.Header.Get("Title")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ntfy.Close)

	env := setupCLITestEnv(t, testsupport.ServeSRT(sampleSRT))
	env.cfg.Notifications.NtfyTopic = ntfy.URL + "/subgen"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if title := <-titles; title != "subgen - Test" {
		t.Fatalf("unexpected title header %q", title)
	}
}
