// Package history keeps a SQLite record of subtitle requests.
//
// A Recorder subscribes to a generation.Coordinator and writes one row per
// request: inserted when the request enters loading and completed when it
// reaches success or error. The CLI reads the table back for
// `subgen history list` and empties it with `subgen history clear`.
package history
