// Package config loads, normalizes, and validates subgen configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as SUBGEN_API_URL. The
// Config type centralizes every knob the CLI and TUI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
