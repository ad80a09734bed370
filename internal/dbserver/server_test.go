package dbserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// connectTestSession wires the server to a client over in-memory
// transports and returns the client session.
func connectTestSession(t *testing.T, store *Store) *mcpsdk.ClientSession {
	t.Helper()

	server := NewServer(store)
	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Close()
		cancel()
	})
	return session
}

func callText(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool %s: %v", name, err)
	}
	var b strings.Builder
	for _, content := range res.Content {
		if text, ok := content.(*mcpsdk.TextContent); ok {
			b.WriteString(text.Text)
		}
	}
	return b.String(), res.IsError
}

func TestServerListsTools(t *testing.T) {
	session := connectTestSession(t, newTestStore(t))

	schemas := map[string]string{}
	for tool, err := range session.Tools(context.Background(), nil) {
		if err != nil {
			t.Fatalf("Tools: %v", err)
		}
		raw, err := json.Marshal(tool.InputSchema)
		if err != nil {
			t.Fatalf("marshal %s schema: %v", tool.Name, err)
		}
		schemas[tool.Name] = string(raw)
	}
	for _, want := range []string{"execute_sql_query", "list_tables", "describe_table"} {
		if _, ok := schemas[want]; !ok {
			t.Errorf("tool %s not listed", want)
		}
	}

	// The declared input schemas must survive the listing round trip.
	if s := schemas["execute_sql_query"]; !strings.Contains(s, `"query"`) || !strings.Contains(s, `"required"`) {
		t.Errorf("execute_sql_query schema = %s", s)
	}
	if s := schemas["describe_table"]; !strings.Contains(s, `"table"`) {
		t.Errorf("describe_table schema = %s", s)
	}
}

func TestServerExecuteQuery(t *testing.T) {
	session := connectTestSession(t, newTestStore(t))

	out, isErr := callText(t, session, "execute_sql_query",
		map[string]any{"query": "SELECT name FROM users ORDER BY id"})
	if isErr {
		t.Fatalf("unexpected tool error: %s", out)
	}
	if !strings.Contains(out, "ada") || !strings.Contains(out, "grace") {
		t.Errorf("output = %q", out)
	}
}

func TestServerRejectsWriteQuery(t *testing.T) {
	session := connectTestSession(t, newTestStore(t))

	out, isErr := callText(t, session, "execute_sql_query",
		map[string]any{"query": "DELETE FROM users"})
	if !isErr {
		t.Fatalf("expected tool error, got %q", out)
	}
	if !strings.Contains(out, "read-only") {
		t.Errorf("error text = %q", out)
	}
}

func TestServerListTablesTool(t *testing.T) {
	session := connectTestSession(t, newTestStore(t))

	out, isErr := callText(t, session, "list_tables", map[string]any{})
	if isErr {
		t.Fatalf("unexpected tool error: %s", out)
	}
	if out != "orders\nusers" {
		t.Errorf("output = %q", out)
	}
}

func TestServerDescribeTableTool(t *testing.T) {
	session := connectTestSession(t, newTestStore(t))

	out, isErr := callText(t, session, "describe_table",
		map[string]any{"table": "orders"})
	if isErr {
		t.Fatalf("unexpected tool error: %s", out)
	}
	if !strings.Contains(out, "user_id | INTEGER | no") {
		t.Errorf("output = %q", out)
	}

	out, isErr = callText(t, session, "describe_table",
		map[string]any{"table": "missing"})
	if !isErr {
		t.Fatalf("expected tool error, got %q", out)
	}
}
