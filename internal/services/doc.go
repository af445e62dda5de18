// Package services defines shared utilities consumed by the subtitle request
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and correlation identifiers for
//     logging.
//   - Structured error markers plus the Wrap helper so failures from the file
//     writer, history store, and preflight checks classify consistently.
//
// Use these helpers when wiring new components so operational behaviour
// (error handling, observability) stays uniform.
package services
