package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"subgen/internal/generation"
	"subgen/internal/srtfile"
)

// generateCmd runs the request off the event loop.
func generateCmd(ctx context.Context, c *generation.Coordinator, apiURL, videoURL string) tea.Cmd {
	return func() tea.Msg {
		return generateDoneMsg{State: c.Generate(ctx, apiURL, videoURL)}
	}
}

// saveCmd writes the subtitle payload of a successful state.
func saveCmd(ctx context.Context, w *srtfile.Writer, state generation.State) tea.Cmd {
	return func() tea.Msg {
		path, err := w.Save(ctx, state.Content)
		return savedMsg{RequestID: state.RequestID, Path: path, Err: err}
	}
}
