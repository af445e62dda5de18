package tui

import "subgen/internal/generation"

// StateMsg carries a published lifecycle state into the program.
type StateMsg struct {
	State generation.State
}

type generateDoneMsg struct {
	State generation.State
}

type savedMsg struct {
	RequestID string
	Path      string
	Err       error
}
