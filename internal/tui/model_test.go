package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/exedev/dbchat/internal/transcript"
)

type fakeClient struct {
	store     *transcript.Store
	response  string
	err       error
	queries   []string
	toolNames []string
}

func (f *fakeClient) ProcessQuery(ctx context.Context, query string) (string, error) {
	f.queries = append(f.queries, query)
	return f.response, f.err
}

func (f *fakeClient) ToolNames(ctx context.Context) ([]string, error) {
	return f.toolNames, nil
}

func (f *fakeClient) Store() *transcript.Store {
	return f.store
}

func newTestModel(client *fakeClient) Model {
	m := New(client, "server.py", "anthropic")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func pressEnter(m Model) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestSubmitRunsQuery(t *testing.T) {
	client := &fakeClient{store: transcript.New(transcript.DefaultWindow), response: "three tables"}
	m := newTestModel(client)

	m = typeText(m, "what tables exist?")
	m, cmd := pressEnter(m)

	if !m.busy {
		t.Error("model should be busy while the turn runs")
	}
	if cmd == nil {
		t.Fatal("expected a command to run the query")
	}

	msg := cmd()
	done, ok := msg.(turnDoneMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want turnDoneMsg", msg)
	}
	if done.Response != "three tables" {
		t.Errorf("response = %q", done.Response)
	}
	if len(client.queries) != 1 || client.queries[0] != "what tables exist?" {
		t.Errorf("queries = %v", client.queries)
	}

	next, _ := m.Update(done)
	m = next.(Model)
	if m.busy {
		t.Error("model should be idle after the turn completes")
	}
	if !containsLine(m, "three tables") {
		t.Error("response not added to chat lines")
	}
}

func TestSubmitIgnoredWhileBusy(t *testing.T) {
	client := &fakeClient{store: transcript.New(transcript.DefaultWindow)}
	m := newTestModel(client)

	m = typeText(m, "first")
	m, _ = pressEnter(m)
	m = typeText(m, "second")
	m, cmd := pressEnter(m)

	if cmd != nil {
		if _, ok := cmd().(turnDoneMsg); ok {
			t.Error("second submit should not start a turn while busy")
		}
	}
}

func TestQuitCommand(t *testing.T) {
	client := &fakeClient{store: transcript.New(transcript.DefaultWindow)}
	m := newTestModel(client)

	m = typeText(m, "Quit")
	m, cmd := pressEnter(m)

	if !m.quitting {
		t.Error("quit should set quitting")
	}
	if cmd == nil {
		t.Fatal("quit should return tea.Quit")
	}
	if len(client.queries) != 0 {
		t.Errorf("quit must not run a turn, got queries %v", client.queries)
	}
}

func TestRefreshClearsStore(t *testing.T) {
	store := transcript.New(transcript.DefaultWindow)
	store.Append(transcript.RoleUser, "old")
	client := &fakeClient{store: store}
	m := newTestModel(client)

	m = typeText(m, "refresh")
	m, cmd := pressEnter(m)

	if store.Len() != 0 {
		t.Errorf("store has %d messages after refresh", store.Len())
	}
	if cmd == nil {
		t.Fatal("refresh should re-fetch the tool catalog")
	}
	if _, ok := cmd().(toolsMsg); !ok {
		t.Error("refresh command should produce toolsMsg")
	}
	if len(client.queries) != 0 {
		t.Errorf("refresh must not run a turn, got queries %v", client.queries)
	}
}

func TestTurnErrorShownInChat(t *testing.T) {
	client := &fakeClient{store: transcript.New(transcript.DefaultWindow)}
	m := newTestModel(client)

	next, _ := m.Update(turnDoneMsg{Err: turnError("anthropic: request failed")})
	m = next.(Model)

	if !containsLine(m, "anthropic: request failed") {
		t.Error("error not shown in chat lines")
	}
}

func TestToolsMsgStoresCatalog(t *testing.T) {
	client := &fakeClient{store: transcript.New(transcript.DefaultWindow)}
	m := newTestModel(client)

	next, _ := m.Update(toolsMsg{Names: []string{"list_tables", "execute_sql_query"}})
	m = next.(Model)

	if len(m.toolNames) != 2 {
		t.Errorf("toolNames = %v", m.toolNames)
	}
	if !strings.Contains(m.renderStatusBar(80), "2 tools") {
		t.Error("status bar should show tool count")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("a short line", 40)
	if len(lines) != 1 || lines[0] != "a short line" {
		t.Errorf("short text should not wrap, got %v", lines)
	}

	lines = wrapText("this is a rather long line that needs wrapping", 20)
	if len(lines) < 2 {
		t.Errorf("long text should wrap, got %v", lines)
	}
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q exceeds width", l)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 20); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	got := truncate("a very long header line indeed", 10)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated text should end with ellipsis, got %q", got)
	}
}

func containsLine(m Model, want string) bool {
	for _, line := range m.lines {
		if strings.Contains(line.text, want) {
			return true
		}
	}
	return false
}

type turnError string

func (e turnError) Error() string { return string(e) }
