// Package status renders the one-line bar under the chat.
package status

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hmv123/RAG-Application/internal/adapters/driving/tui/keymap"
	"github.com/Hmv123/RAG-Application/internal/adapters/driving/tui/styles"
)

type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
)

// Bar shows the session state on the left and key hints on the right.
// The hints shrink first when the terminal is narrow.
type Bar struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model

	state   State
	message string
	turns   int
	width   int

	// since is when the current question was sent.
	since time.Time
	now   func() time.Time
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	h := help.New()
	h.Styles.ShortKey = s.Normal
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted
	h.Styles.Ellipsis = s.Muted

	return &Bar{
		styles: s,
		keys:   km,
		help:   h,
		state:  StateReady,
		width:  80,
		now:    time.Now,
	}
}

func (b *Bar) View() string {
	left := b.status()

	// Two cells of bar padding and one space between the halves.
	b.help.Width = max(b.width-lipgloss.Width(left)-3, 0)
	right := b.help.ShortHelpView(b.keys.ShortHelp())

	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), right)
	return b.styles.StatusBar.Width(b.width).Render(row)
}

func (b *Bar) status() string {
	switch b.state {
	case StateThinking:
		msg := b.message
		if msg == "" {
			msg = "Thinking..."
		}
		if elapsed := b.now().Sub(b.since); elapsed >= time.Second {
			msg += fmt.Sprintf(" %ds", int(elapsed.Seconds()))
		}
		return b.styles.Warning.Render(msg)
	case StateError:
		if b.message == "" {
			return b.styles.Error.Render("Error")
		}
		return b.styles.Error.Render("Error: " + b.message)
	case StateReady:
		if b.turns == 1 {
			return b.styles.Normal.Render("1 turn")
		}
		if b.turns > 1 {
			return b.styles.Normal.Render(fmt.Sprintf("%d turns", b.turns))
		}
	}
	return b.styles.Muted.Render("Ready")
}

// SetState switches the state. Entering StateThinking starts the timer.
func (b *Bar) SetState(state State) {
	if state == StateThinking && b.state != StateThinking {
		b.since = b.now()
	}
	b.state = state
}

func (b *Bar) State() State {
	return b.state
}

// SetMessage replaces the thinking or error text.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

func (b *Bar) Message() string {
	return b.message
}

func (b *Bar) SetTurns(n int) {
	b.turns = n
}

func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Bindings are the hinted keys.
func (b *Bar) Bindings() []key.Binding {
	return b.keys.ShortHelp()
}
