package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"subgen/internal/generation"
)

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if opts.Coordinator == nil {
		return errors.New("tui: coordinator is required")
	}
	program := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))

	sub := opts.Coordinator.Subscribe(generation.ObserverFunc(func(state generation.State) {
		program.Send(StateMsg{State: state})
	}))
	defer sub.Unsubscribe()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
