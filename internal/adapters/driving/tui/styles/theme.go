// Package styles holds the colours and lipgloss styles of the chat TUI.
package styles

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a palette. Each colour adapts to light and dark terminals.
type Theme struct {
	User      lipgloss.TerminalColor
	Assistant lipgloss.TerminalColor
	Text      lipgloss.TerminalColor
	Dim       lipgloss.TerminalColor
	Good      lipgloss.TerminalColor
	Pending   lipgloss.TerminalColor
	Bad       lipgloss.TerminalColor
	Frame     lipgloss.TerminalColor
	BarFill   lipgloss.TerminalColor
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// DefaultTheme is a violet and cyan palette.
func DefaultTheme() *Theme {
	return &Theme{
		User:      adaptive("#5B21B6", "#A78BFA"),
		Assistant: adaptive("#0E7490", "#22D3EE"),
		Text:      adaptive("#1E1E2E", "#CDD6F4"),
		Dim:       adaptive("#6C7086", "#7F849C"),
		Good:      adaptive("#15803D", "#A6E3A1"),
		Pending:   adaptive("#A16207", "#F9E2AF"),
		Bad:       adaptive("#B91C1C", "#F38BA8"),
		Frame:     adaptive("#BCC0CC", "#45475A"),
		BarFill:   adaptive("#E6E9EF", "#181825"),
	}
}

// MonochromeTheme leaves every colour to the terminal. It is used when
// NO_COLOR is set.
func MonochromeTheme() *Theme {
	none := lipgloss.NoColor{}
	return &Theme{
		User: none, Assistant: none, Text: none, Dim: none,
		Good: none, Pending: none, Bad: none, Frame: none, BarFill: none,
	}
}

// Styles are the rendered roles used by the views.
type Styles struct {
	theme *Theme

	Title          lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Message        lipgloss.Style
	Source         lipgloss.Style

	Normal  lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	Input     lipgloss.Style
	StatusBar lipgloss.Style
}

// NewStyles derives all styles from t. A nil theme means DefaultTheme.
func NewStyles(t *Theme) *Styles {
	if t == nil {
		t = DefaultTheme()
	}
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme:          t,
		Title:          fg(t.User).Bold(true),
		UserLabel:      fg(t.User).Bold(true),
		AssistantLabel: fg(t.Assistant).Bold(true),
		Message:        fg(t.Text).PaddingLeft(2),
		Source:         fg(t.Dim).Italic(true).PaddingLeft(4),

		Normal:  fg(t.Text),
		Muted:   fg(t.Dim),
		Error:   fg(t.Bad),
		Success: fg(t.Good),
		Warning: fg(t.Pending),

		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Frame).
			Padding(0, 1),
		StatusBar: fg(t.Dim).Background(t.BarFill).Padding(0, 1),
	}
}

// DefaultStyles honours NO_COLOR (https://no-color.org).
func DefaultStyles() *Styles {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return NewStyles(MonochromeTheme())
	}
	return NewStyles(DefaultTheme())
}

func (s *Styles) Theme() *Theme {
	return s.theme
}
