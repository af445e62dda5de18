package tui

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(titleStyle.Render("subgen"))
	b.WriteString("\n\n")

	labels := []string{"API URL", "Video URL"}
	for i, input := range m.inputs {
		label := labelStyle.Render(labels[i])
		if i == m.focus {
			label = focusedStyle.Render(labels[i])
		}
		b.WriteString(label)
		b.WriteByte('\n')
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(buttonDisabledStyle.Render("Generate"))
		b.WriteString("  ")
		b.WriteString(m.spinner.View())
		b.WriteString(pendingStyle.Render(" Generating subtitles..."))
	} else {
		b.WriteString(buttonStyle.Render("Generate"))
	}
	b.WriteString("\n\n")

	b.WriteString(blurredStyle.Render("Status: " + titleCaser.String(string(m.state.Status))))
	b.WriteByte('\n')
	if m.status != "" {
		if m.statusIsError {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(successStyle.Render(m.status))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("tab: switch field • enter: generate • esc: quit"))
	return docStyle.Render(b.String())
}
