// Package notifications delivers subtitle request events via ntfy.
//
// The default implementation publishes to the topic URL configured in
// config.toml and degrades to a no-op when no topic is set. Observer adapts
// the service to generation lifecycle states so the CLI and TUI get push
// notifications without any HTTP glue of their own.
package notifications
