// Package tui is the interactive front end started by `subgen tui`.
//
// It mirrors the single-screen app: two text inputs, a generate action, a
// spinner while the request is in flight and a status line for the outcome.
// Lifecycle states arrive from the coordinator through an observer that
// forwards them into the bubbletea program.
package tui
