package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"subgen/internal/subtitleapi"
)

// SubtitleServer is a fake generation endpoint.
type SubtitleServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []subtitleapi.VideoRequest
}

// NewSubtitleServer serves POST /generate-subtitles. respond receives the
// decoded request and writes whatever reply the test needs.
func NewSubtitleServer(t testing.TB, respond func(w http.ResponseWriter, req subtitleapi.VideoRequest)) *SubtitleServer {
	t.Helper()

	s := &SubtitleServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /"+subtitleapi.GeneratePath, func(w http.ResponseWriter, r *http.Request) {
		var req subtitleapi.VideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		respond(w, req)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// ServeSRT replies with a successful payload carrying content.
func ServeSRT(content string) func(http.ResponseWriter, subtitleapi.VideoRequest) {
	return func(w http.ResponseWriter, _ subtitleapi.VideoRequest) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "srtContent": content})
	}
}

// Requests returns the bodies received so far.
func (s *SubtitleServer) Requests() []subtitleapi.VideoRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]subtitleapi.VideoRequest(nil), s.requests...)
}
