package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"subgen/internal/generation"
	"subgen/internal/srtfile"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		h, _ := docStyle.GetFrameSize()
		for i := range m.inputs {
			m.inputs[i].Width = max(20, msg.Width-h-4)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case tea.KeyShiftTab, tea.KeyUp:
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case tea.KeyEnter:
			return m.submit()
		}

	case StateMsg:
		m = m.applyState(msg.State)
		return m, nil

	case generateDoneMsg:
		m = m.applyState(msg.State)
		if msg.State.Status == generation.StatusSuccess && m.writer != nil {
			m.status = "Saving subtitle file..."
			m.statusIsError = false
			return m, saveCmd(m.ctx, m.writer, msg.State)
		}
		return m, nil

	case savedMsg:
		if msg.Err != nil {
			m.status = srtfile.FailedMessage(msg.Err)
			m.statusIsError = true
			return m, nil
		}
		m.status = srtfile.SavedMessage(msg.Path)
		m.statusIsError = false
		m.lastSaved = msg.Path
		if m.onSaved != nil {
			m.onSaved(msg.RequestID, msg.Path)
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	// Inputs are read-only while a request is in flight.
	if _, isKey := msg.(tea.KeyMsg); !isKey || !m.loading {
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(index int) tea.Cmd {
	m.focus = index
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == index {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	apiURL := m.inputs[fieldAPI].Value()
	videoURL := m.inputs[fieldVideo].Value()
	if !generation.FieldsPresent(apiURL, videoURL) {
		m.status = generation.MessageMissingFields
		m.statusIsError = true
		return m, nil
	}
	if m.coordinator == nil {
		m.status = "generation is not configured"
		m.statusIsError = true
		return m, nil
	}
	m.loading = true
	m.status = ""
	m.statusIsError = false
	return m, generateCmd(m.ctx, m.coordinator, apiURL, videoURL)
}

func (m Model) applyState(state generation.State) Model {
	m.state = state
	switch state.Status {
	case generation.StatusLoading:
		m.loading = true
	case generation.StatusError:
		m.loading = false
		m.status = state.Message
		m.statusIsError = true
	case generation.StatusSuccess, generation.StatusIdle:
		m.loading = false
	}
	return m
}
