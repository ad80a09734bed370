// Package tui implements the full-screen chat interface used when the
// client runs on an interactive terminal.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/exedev/dbchat/internal/transcript"
)

const maxChatLines = 500

// Client is the turn-running surface the chat screen drives.
type Client interface {
	ProcessQuery(ctx context.Context, query string) (string, error)
	ToolNames(ctx context.Context) ([]string, error)
	Store() *transcript.Store
}

type chatLine struct {
	text  string
	style string // "user", "assistant", "tool", "error", "info"
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	client   Client
	target   string
	provider string

	lines     []chatLine
	toolNames []string

	input    textinput.Model
	vp       viewport.Model
	ready    bool // viewport sized after first WindowSizeMsg
	busy     bool
	width    int
	height   int
	quitting bool
}

// New builds the chat screen for a connected client.
func New(client Client, target, provider string) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your data, or type quit"
	ti.Prompt = "Query: "
	ti.CharLimit = 2000
	ti.Focus()

	return Model{
		client:   client,
		target:   target,
		provider: provider,
		input:    ti,
	}
}

// Run starts the chat screen and blocks until the user quits.
func Run(client Client, target, provider string) error {
	p := tea.NewProgram(New(client, target, provider), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, fetchToolsCmd(m.client))
}

func fetchToolsCmd(client Client) tea.Cmd {
	return func() tea.Msg {
		names, err := client.ToolNames(context.Background())
		return toolsMsg{Names: names, Err: err}
	}
}

func runQueryCmd(client Client, query string) tea.Cmd {
	return func() tea.Msg {
		response, err := client.ProcessQuery(context.Background(), query)
		return turnDoneMsg{Response: response, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.handleSubmit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
		// Remaining keys go to the input line only; the viewport binds
		// letter keys for scrolling and would eat typed text.
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case toolsMsg:
		if msg.Err != nil {
			m.addLine("could not list tools: "+msg.Err.Error(), "error")
		} else {
			m.toolNames = msg.Names
		}
		m.refreshViewport()

	case turnDoneMsg:
		m.busy = false
		if msg.Err != nil {
			m.addLine(msg.Err.Error(), "error")
		} else {
			m.addLine(msg.Response, "assistant")
		}
		m.refreshViewport()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	switch strings.ToLower(text) {
	case "quit":
		m.quitting = true
		return m, tea.Quit
	case "refresh":
		m.client.Store().Clear()
		m.lines = nil
		m.addLine("conversation cleared", "info")
		m.refreshViewport()
		return m, fetchToolsCmd(m.client)
	}

	m.addLine(text, "user")
	m.busy = true
	m.refreshViewport()
	return m, runQueryCmd(m.client, text)
}

func (m *Model) addLine(text, style string) {
	for _, part := range strings.Split(text, "\n") {
		m.lines = append(m.lines, chatLine{text: part, style: style})
	}
	if len(m.lines) > maxChatLines {
		m.lines = m.lines[len(m.lines)-maxChatLines:]
	}
}

func (m *Model) layout() {
	// Header, input box, and status bar leave the rest for the chat
	// panel.
	vpH := m.height - 7
	if vpH < 3 {
		vpH = 3
	}
	vpW := m.width - 4
	if vpW < 20 {
		vpW = 20
	}
	if !m.ready {
		m.vp = viewport.New(vpW, vpH)
		m.ready = true
	} else {
		m.vp.Width = vpW
		m.vp.Height = vpH
	}
	m.input.Width = vpW - len(m.input.Prompt)
	m.refreshViewport()
}
