// Package mcp owns the tool-execution session: connecting to an MCP
// server over stdio or SSE, listing its tools, invoking them, and tearing
// the connection down.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"mvdan.cc/sh/v3/shell"

	"github.com/exedev/dbchat/internal/errors"
	"github.com/exedev/dbchat/internal/llm"
)

// State tracks the session lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateQuerying
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateQuerying:
		return "querying"
	case StateClosing:
		return "closing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var urlPattern = regexp.MustCompile(`^https?://`)

// Session is a live connection to one MCP server. One session serves one
// conversation; turns are serialized, so the lock only guards state
// transitions observed by the UI.
type Session struct {
	mu      sync.Mutex
	client  *mcpsdk.Client
	session *mcpsdk.ClientSession
	state   State
	target  string
}

// Dial connects to the server named by target. A target matching
// ^https?:// connects over SSE; anything else is treated as a stdio
// server command (script path, npm package, or explicit command line).
// The transport handshake covers the protocol initialize exchange.
func Dial(ctx context.Context, target string) (*Session, error) {
	s := &Session{
		client: mcpsdk.NewClient(&mcpsdk.Implementation{Name: "dbchat", Version: "dev"}, nil),
		target: target,
		state:  StateConnecting,
	}

	transport, err := buildTransport(ctx, target)
	if err != nil {
		s.state = StateDisconnected
		return nil, err
	}

	session, err := s.client.Connect(ctx, transport, nil)
	if err != nil {
		s.state = StateDisconnected
		// The server may simply not be up yet.
		return nil, errors.NewRetryable(fmt.Errorf("connect to MCP server %s: %w", target, err), "connect")
	}

	s.session = session
	s.state = StateReady
	return s, nil
}

// Target returns the server identifier this session was dialed with.
func (s *Session) Target() string {
	return s.target
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BeginQuery marks the session busy with one query. Turns are processed
// one at a time per conversation; a second concurrent query is a bug.
func (s *Session) BeginQuery() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return fmt.Errorf("session is %s, not ready", s.state)
	}
	s.state = StateQuerying
	return nil
}

// EndQuery returns the session to ready after a query, successful or not.
func (s *Session) EndQuery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateQuerying {
		s.state = StateReady
	}
}

// ListTools fetches the server's current tool catalog. Descriptors are
// never cached; servers may change their catalog between turns.
func (s *Session) ListTools(ctx context.Context) ([]llm.ToolDef, error) {
	if err := s.connected(); err != nil {
		return nil, err
	}
	var tools []llm.ToolDef
	for tool, err := range s.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		tools = append(tools, llm.ToolDef{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schemaToMap(tool.InputSchema),
		})
	}
	return tools, nil
}

// CallTool invokes one tool and renders its result content as text.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if err := s.connected(); err != nil {
		return "", err
	}
	result, err := s.session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call tool %s: %w", name, err)
	}
	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(*mcpsdk.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// Close releases the transport. Safe to call from any state, including
// after a failed connect.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosing
	session := s.session
	s.session = nil
	s.mu.Unlock()

	var err error
	if session != nil {
		err = session.Close()
	}

	s.mu.Lock()
	s.state = StateDisconnected
	s.mu.Unlock()
	return err
}

func (s *Session) connected() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.state == StateClosing || s.state == StateDisconnected {
		return fmt.Errorf("session is not connected")
	}
	return nil
}

func buildTransport(ctx context.Context, target string) (mcpsdk.Transport, error) {
	if urlPattern.MatchString(target) {
		return &mcpsdk.SSEClientTransport{Endpoint: target}, nil
	}
	cmd, err := stdioCommand(ctx, target)
	if err != nil {
		return nil, err
	}
	return &mcpsdk.CommandTransport{Command: cmd}, nil
}

// stdioCommand resolves a stdio server target into a runnable command:
// npm-style identifiers run under npx, .py scripts under python, .js
// scripts under node, and anything with spaces is shell-split and run
// verbatim.
func stdioCommand(ctx context.Context, target string) (*exec.Cmd, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("server target is empty")
	}

	if strings.ContainsAny(target, " \t") {
		fields, err := shell.Fields(target, os.Getenv)
		if err != nil {
			return nil, fmt.Errorf("parse server command: %w", err)
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("server command is empty")
		}
		return exec.CommandContext(ctx, fields[0], fields[1:]...), nil
	}

	if strings.HasPrefix(target, "@") || !strings.Contains(target, "/") {
		return exec.CommandContext(ctx, "npx", target), nil
	}

	switch {
	case strings.HasSuffix(target, ".py"):
		return exec.CommandContext(ctx, "python", target), nil
	case strings.HasSuffix(target, ".js"):
		return exec.CommandContext(ctx, "node", target), nil
	default:
		// A bad target never fixes itself; classify so the caller does
		// not suggest retrying.
		return nil, errors.NewPermanent(fmt.Errorf("server script must be a .py or .js file, or an npm package"), "target")
	}
}

func schemaToMap(schema any) map[string]any {
	if schema == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
