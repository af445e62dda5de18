package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"subgen/internal/generation"
	"subgen/internal/history"
	"subgen/internal/logging"
	"subgen/internal/services"
	"subgen/internal/subtitleapi"
	"subgen/internal/testsupport"
)

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	ctx := context.Background()
	started := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	if err := store.Start(ctx, "req-1", "https://api.example.com", "https://v.example/a.mp4", started); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	entry, err := reopened.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry == nil || entry.Status != "loading" || !entry.StartedAt.Equal(started) {
		t.Fatalf("unexpected entry after reopen: %#v", entry)
	}
	if entry.Finished() {
		t.Fatal("entry should still be running")
	}
}

func TestOpenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	if _, err := history.Open(cfg); !errors.Is(err, history.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestFinishListAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.Start(ctx, id, "https://api", "https://video", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Start %s failed: %v", id, err)
		}
	}
	if err := store.Finish(ctx, "b", history.Outcome{Status: "error", FailureKind: "transport", Message: "offline", FinishedAt: base.Add(90 * time.Second)}); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if err := store.Finish(ctx, "missing", history.Outcome{Status: "success"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing request, got %v", err)
	}
	if err := store.SetOutputPath(ctx, "b", "/tmp/x.srt"); err != nil {
		t.Fatalf("SetOutputPath failed: %v", err)
	}

	entries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 || entries[0].RequestID != "c" || entries[1].RequestID != "b" {
		t.Fatalf("expected newest first limited to 2, got %#v", entries)
	}
	b := entries[1]
	if b.Status != "error" || b.FailureKind != "transport" || b.Message != "offline" || b.OutputPath != "/tmp/x.srt" {
		t.Fatalf("unexpected finished entry: %#v", b)
	}
	if b.Duration() != 30*time.Second {
		t.Fatalf("unexpected duration %s", b.Duration())
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(all))
	}
}

type stubTransport struct {
	resp *subtitleapi.SubtitleResponse
	err  error
}

func (s stubTransport) GenerateSubtitles(context.Context, string, subtitleapi.VideoRequest) (*subtitleapi.SubtitleResponse, error) {
	return s.resp, s.err
}

func TestRecorderFollowsCoordinator(t *testing.T) {
	store, err := history.OpenPath(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	srt := "1\n00:00:01,000 --> 00:00:02,000\nA\n\n2\n00:00:03,000 --> 00:00:04,000\nB\n"
	c := generation.NewCoordinator(stubTransport{resp: &subtitleapi.SubtitleResponse{SRTContent: &srt}},
		generation.WithIDGenerator(func() string { return "req-ok" }))
	recorder := history.NewRecorder(store, logging.NewNop())
	c.Subscribe(recorder)

	c.Generate(context.Background(), "https://api.example.com", "https://v.example/a.mp4")
	recorder.RecordOutput(context.Background(), "req-ok", "/out/subtitle.srt")

	entry, err := store.Get(context.Background(), "req-ok")
	if err != nil || entry == nil {
		t.Fatalf("Get failed: entry=%v err=%v", entry, err)
	}
	if entry.Status != "success" || entry.CueCount != 2 || entry.ContentBytes != len(srt) {
		t.Fatalf("unexpected success entry: %#v", entry)
	}
	if entry.OutputPath != "/out/subtitle.srt" || !entry.Finished() {
		t.Fatalf("unexpected output/finish: %#v", entry)
	}

	failing := generation.NewCoordinator(stubTransport{err: &subtitleapi.StatusError{Code: 503, Message: "Service Unavailable"}},
		generation.WithIDGenerator(func() string { return "req-fail" }))
	failing.Subscribe(recorder)
	failing.Generate(context.Background(), "https://api.example.com", "https://v.example/a.mp4")

	failed, err := store.Get(context.Background(), "req-fail")
	if err != nil || failed == nil {
		t.Fatalf("Get failed: entry=%v err=%v", failed, err)
	}
	if failed.Status != "error" || failed.FailureKind != "application" {
		t.Fatalf("unexpected failure entry: %#v", failed)
	}
	if failed.Message != "API Error: 503 Service Unavailable - No error details" {
		t.Fatalf("unexpected failure message %q", failed.Message)
	}
}
