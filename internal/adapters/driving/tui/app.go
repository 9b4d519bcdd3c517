package tui

import (
	"context"
	"fmt"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Hmv123/RAG-Application/internal/adapters/driving/tui/keymap"
	"github.com/Hmv123/RAG-Application/internal/adapters/driving/tui/styles"
	"github.com/Hmv123/RAG-Application/internal/adapters/driving/tui/views/chat"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

const windowTitle = "ragapp chat"

// App is the root model. It owns a single chat view and sets up the
// terminal around it.
type App struct {
	chat *chat.View
}

func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	view := chat.NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), ports.Answer, ports.TopK)
	return &App{chat: view}, nil
}

// WithContext bounds the answering calls made by the session.
func (a *App) WithContext(ctx context.Context) *App {
	a.chat.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle(windowTitle), a.chat.Init())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	view, cmd := a.chat.Update(msg)
	a.chat = view
	return a, cmd
}

func (a *App) View() string {
	return a.chat.View()
}

// History is the conversation as the user left it.
func (a *App) History() domain.ConversationHistory {
	return a.chat.History()
}

// Run opens the full-screen chat and blocks until the user quits or ctx
// ends. It returns the final conversation. A panic inside the program is
// returned as an error carrying the stack.
func Run(ctx context.Context, ports *Ports, opts ...tea.ProgramOption) (history domain.ConversationHistory, err error) {
	app, err := NewApp(ports)
	if err != nil {
		return nil, err
	}
	app.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tui: panic: %v\n%s", r, debug.Stack())
		}
	}()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(app, opts...).Run()
	if err != nil {
		return app.History(), fmt.Errorf("tui: %w", err)
	}
	if done, ok := final.(*App); ok {
		return done.History(), nil
	}
	return app.History(), nil
}
