package qa

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TerminalStyles colour question and answer lines on a terminal.
type TerminalStyles struct {
	Question lipgloss.Style
	Answer   lipgloss.Style
}

// DefaultTerminalStyles mirrors the web colours: blue questions, green answers.
func DefaultTerminalStyles() TerminalStyles {
	return TerminalStyles{
		Question: lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
		Answer:   lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
	}
}

// RenderTerminal returns the Q&A section with question and answer lines styled.
func RenderTerminal(text string, styles TerminalStyles) string {
	lines := Lines(text)
	for i, line := range lines {
		switch Classify(line) {
		case Question:
			lines[i] = styles.Question.Render(line)
		case Answer:
			lines[i] = styles.Answer.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
