package preflight

import (
	"context"
	"path/filepath"

	"subgen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// The endpoint is only dialed when probe is true.
func RunAll(ctx context.Context, cfg *config.Config, probe bool) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Output.Dir))
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("History directory", filepath.Dir(cfg.History.Path)))
	}
	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}

	api := CheckAPIURL("Subtitle API", cfg.API.URL)
	results = append(results, api)
	if probe && api.Passed && cfg.API.URL != "" {
		results = append(results, CheckReachable(ctx, "Subtitle API reachability", cfg.API.URL))
	}
	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckAPIURL("ntfy topic", cfg.Notifications.NtfyTopic))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
