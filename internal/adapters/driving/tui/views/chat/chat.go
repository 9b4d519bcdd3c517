// Package chat provides the conversation view: a scrolling transcript, a
// question editor and a status bar.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Hmv123/RAG-Application/internal/adapters/driving/tui/components/status"
	"github.com/Hmv123/RAG-Application/internal/adapters/driving/tui/keymap"
	"github.com/Hmv123/RAG-Application/internal/adapters/driving/tui/messages"
	"github.com/Hmv123/RAG-Application/internal/adapters/driving/tui/styles"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driving"
)

const (
	inputHeight  = 3
	chromeHeight = inputHeight + 4 // title, input border, status bar
	maxSnippet   = 160
)

// entry is one question and, once it arrives, its answer.
type entry struct {
	question string
	turn     *domain.Turn
	err      error
}

// View is the chat view.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	statusbar  *status.Bar
	input      textarea.Model
	transcript viewport.Model
	spinner    spinner.Model

	answers driving.AnswerService
	topK    int
	ctx     context.Context

	history     domain.ConversationHistory
	entries     []entry
	showSources bool
	waiting     bool

	width  int
	height int
}

// NewView creates a chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answers driving.AnswerService, topK int) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	input := textarea.New()
	input.Placeholder = "Ask a question about your documents..."
	input.ShowLineNumbers = false
	input.CharLimit = 4000
	input.SetHeight(inputHeight)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	v := &View{
		styles:     s,
		keymap:     km,
		statusbar:  status.NewBar(s, km),
		input:      input,
		transcript: viewport.New(80, 24-chromeHeight),
		spinner:    sp,
		answers:    answers,
		topK:       topK,
		ctx:        context.Background(),
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context used for answering calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case spinner.TickMsg:
		if !v.waiting {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.statusbar.SetMessage(v.spinner.View() + " Thinking...")
		return v, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	v.transcript, cmd = v.transcript.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keymap.Reset):
		if v.waiting {
			return v, nil
		}
		v.reset()
		return v, func() tea.Msg { return messages.ConversationReset{} }

	case key.Matches(msg, v.keymap.Sources):
		v.showSources = !v.showSources
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keymap.ScrollUp):
		v.transcript.HalfPageUp()
		return v, nil

	case key.Matches(msg, v.keymap.ScrollDown):
		v.transcript.HalfPageDown()
		return v, nil

	case key.Matches(msg, v.keymap.Send):
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the current input as a question.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.waiting {
		return nil
	}

	v.input.Reset()
	v.waiting = true
	v.entries = append(v.entries, entry{question: question})
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.refresh()

	return tea.Batch(v.ask(question), v.spinner.Tick)
}

// ask runs one answering call against a snapshot of the history.
func (v *View) ask(question string) tea.Cmd {
	ctx, history, topK := v.ctx, v.history, v.topK
	return func() tea.Msg {
		turn, err := v.answers.AnswerTurn(ctx, question, history, topK)
		return messages.AnswerCompleted{Turn: turn, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.waiting = false
	if len(v.entries) == 0 {
		return
	}
	last := &v.entries[len(v.entries)-1]

	switch {
	case msg.Err != nil:
		last.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	case msg.Turn != nil:
		last.turn = msg.Turn
		v.history = msg.Turn.History
		if msg.Turn.Failed() {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Turn.GenerationErr.Error())
		} else {
			v.statusbar.SetState(status.StateReady)
			v.statusbar.SetMessage("")
		}
	}
	v.statusbar.SetTurns(v.Turns())
	v.refresh()
}

func (v *View) reset() {
	v.history = nil
	v.entries = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
	v.statusbar.SetTurns(0)
	v.refresh()
}

// refresh re-renders the transcript and scrolls to the newest turn.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.entries) == 0 {
		return v.styles.Muted.Render("No messages yet. Type a question and press enter.")
	}

	wrap := v.styles.Message.Width(max(v.width-4, 20))

	var b strings.Builder
	for i, e := range v.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.styles.UserLabel.Render("You"))
		b.WriteString("\n")
		b.WriteString(wrap.Render(e.question))
		b.WriteString("\n")
		b.WriteString(v.styles.AssistantLabel.Render("Assistant"))
		b.WriteString("\n")

		switch {
		case e.err != nil:
			b.WriteString(v.styles.Error.Render("  " + e.err.Error()))
		case e.turn == nil:
			b.WriteString(v.styles.Muted.Render("  ..."))
		case e.turn.Failed():
			b.WriteString(v.styles.Error.Render(wrap.Render(e.turn.Answer)))
		default:
			b.WriteString(wrap.Render(e.turn.Answer))
		}
		b.WriteString("\n")

		if v.showSources && e.turn != nil {
			b.WriteString(v.renderSources(e.turn))
		}
	}
	return b.String()
}

func (v *View) renderSources(turn *domain.Turn) string {
	if turn.RetrievalErr != nil {
		return v.styles.Warning.Render("    retrieval failed: "+turn.RetrievalErr.Error()) + "\n"
	}
	if len(turn.Context) == 0 {
		return v.styles.Source.Render("no context retrieved") + "\n"
	}

	var b strings.Builder
	for _, r := range turn.Context {
		name := r.DocumentName
		if name == "" {
			name = r.ID
		}
		line := fmt.Sprintf("[%.2f] %s: %s", r.Score, name, snippet(r.Content))
		b.WriteString(v.styles.Source.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxSnippet {
		return s
	}
	return s[:maxSnippet] + "..."
}

// View renders the chat view.
func (v *View) View() string {
	title := v.styles.Title.Render("ragapp chat")
	input := v.styles.Input.Width(max(v.width-2, 10)).Render(v.input.View())
	return strings.Join([]string{title, v.transcript.View(), input, v.statusbar.View()}, "\n")
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.input.SetWidth(max(width-4, 10))
	v.transcript.Width = width
	v.transcript.Height = max(height-chromeHeight, 3)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// History returns the conversation so far.
func (v *View) History() domain.ConversationHistory {
	return v.history
}

// Turns returns the number of completed question and answer pairs.
func (v *View) Turns() int {
	return len(v.history) / 2
}

// Waiting reports whether an answer is in flight.
func (v *View) Waiting() bool {
	return v.waiting
}
