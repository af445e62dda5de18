package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"subgen/internal/config"
)

const userAgent = "subgen/0.1.0"

// Event names a notification trigger.
type Event string

const (
	EventGenerationSucceeded Event = "generation_succeeded"
	EventGenerationFailed    Event = "generation_failed"
	EventSubtitleSaved       Event = "subtitle_saved"
	EventTest                Event = "test"
)

// Payload carries event fields. Keys are event specific.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: cfg.NotificationTimeout()},
		success:  cfg.Notifications.Success,
		errors:   cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	success  bool
	errors   bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventGenerationSucceeded:
		if !n.success {
			return message{}, false
		}
		body := fmt.Sprintf("✅ Subtitles ready: %s", payload.text("videoURL"))
		if cues, ok := payload["cueCount"].(int); ok && cues > 0 {
			body = fmt.Sprintf("%s (%d cues)", body, cues)
		}
		return message{
			title: "subgen - Subtitles Ready",
			body:  body,
			tags:  []string{"subgen", "generate", "completed"},
		}, true
	case EventGenerationFailed:
		if !n.errors {
			return message{}, false
		}
		var b strings.Builder
		b.WriteString("❌ Subtitle generation failed")
		if kind := payload.text("kind"); kind != "" {
			b.WriteString(" (")
			b.WriteString(kind)
			b.WriteString(")")
		}
		b.WriteString(": ")
		if msg := payload.text("message"); msg != "" {
			b.WriteString(msg)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "subgen - Error",
			body:     b.String(),
			tags:     []string{"subgen", "error", "alert"},
			priority: "high",
		}, true
	case EventSubtitleSaved:
		if !n.success {
			return message{}, false
		}
		return message{
			title: "subgen - Subtitle Saved",
			body:  fmt.Sprintf("💾 Saved: %s", payload.text("path")),
			tags:  []string{"subgen", "file", "saved"},
		}, true
	case EventTest:
		return message{
			title:    "subgen - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"subgen", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
