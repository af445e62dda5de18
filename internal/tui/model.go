package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"subgen/internal/generation"
	"subgen/internal/srtfile"
)

const (
	fieldAPI = iota
	fieldVideo
	fieldCount
)

// Options wires the model to the rest of the application.
type Options struct {
	Coordinator   *generation.Coordinator
	Writer        *srtfile.Writer
	DefaultAPIURL string
	// OnSaved is called after a subtitle file is written.
	OnSaved func(requestID, path string)
}

// Model is the bubbletea model for the generate screen.
type Model struct {
	ctx         context.Context
	coordinator *generation.Coordinator
	writer      *srtfile.Writer
	onSaved     func(requestID, path string)

	inputs  []textinput.Model
	focus   int
	spinner spinner.Model

	state         generation.State
	loading       bool
	status        string
	statusIsError bool
	lastSaved     string

	width    int
	quitting bool
}

// NewModel builds the initial model. The API field is prefilled with
// opts.DefaultAPIURL when set.
func NewModel(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	api := textinput.New()
	api.Placeholder = "https://subtitles.example.com/"
	api.Prompt = "> "
	api.CharLimit = 2048
	api.SetValue(opts.DefaultAPIURL)
	api.Focus()

	video := textinput.New()
	video.Placeholder = "https://videos.example.com/clip.mp4"
	video.Prompt = "> "
	video.CharLimit = 2048

	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))))

	state := generation.Idle()
	if opts.Coordinator != nil {
		state = opts.Coordinator.CurrentState()
	}
	return Model{
		ctx:         ctx,
		coordinator: opts.Coordinator,
		writer:      opts.Writer,
		onSaved:     opts.OnSaved,
		inputs:      []textinput.Model{api, video},
		spinner:     s,
		state:       state,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Status returns the current status line text.
func (m Model) Status() string { return m.status }

// State returns the last lifecycle state the model saw.
func (m Model) State() generation.State { return m.state }

// Loading reports whether the generate action is disabled.
func (m Model) Loading() bool { return m.loading }

// LastSaved returns the path of the most recently saved file.
func (m Model) LastSaved() string { return m.lastSaved }
