// Package logging assembles structured slog loggers and formatting helpers used
// across subgen.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request code can tag log lines
// with stage names and correlation IDs. A no-op logger is provided for tests
// and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
