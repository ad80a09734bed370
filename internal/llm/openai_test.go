package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/exedev/dbchat/internal/transcript"
)

func TestOpenAIProcessQueryTextOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var req openaiRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("unmarshal request: %v", err)
		}
		if len(req.Messages) != 1 {
			t.Errorf("expected 1 message, got %d", len(req.Messages))
		}
		if req.ToolChoice != "auto" {
			t.Errorf("expected tool_choice auto, got %q", req.ToolChoice)
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "list_tables" {
			t.Errorf("tool catalog not forwarded: %+v", req.Tools)
		}

		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{
				Message:      openaiMessage{Role: "assistant", Content: "Hello there!"},
				FinishReason: "stop",
			}},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "test-model", Transport{BaseURL: server.URL})
	tools := []ToolDef{{Name: "list_tables", Description: "List tables", InputSchema: map[string]any{"type": "object"}}}

	turn, err := p.ProcessQuery(context.Background(), "Hello!", tools, nil)
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}
	if turn.Text != "Hello there!" {
		t.Errorf("unexpected text: %q", turn.Text)
	}
	// No tool calls: the only transcript extension is the user message.
	if len(turn.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(turn.Messages))
	}
	if turn.Messages[0].Role != transcript.RoleUser {
		t.Errorf("expected user role, got %s", turn.Messages[0].Role)
	}
	if len(turn.ToolCalls()) != 0 {
		t.Errorf("expected no tool calls")
	}
}

func TestOpenAIProcessQueryWithToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{
				Message: openaiMessage{
					Role:    "assistant",
					Content: "Let me check.",
					ToolCalls: []openaiToolCall{{
						ID:   "call_1",
						Type: "function",
						Function: openaiCallFunction{
							Name:      "execute_sql_query",
							Arguments: `{"query":"SELECT * FROM users"}`,
						},
					}},
				},
				FinishReason: "tool_calls",
			}},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "test-model", Transport{BaseURL: server.URL})
	turn, err := p.ProcessQuery(context.Background(), "show users", nil, nil)
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}

	if !strings.Contains(turn.Text, "[Tool call: execute_sql_query with args ") {
		t.Errorf("marker missing from text: %q", turn.Text)
	}
	// Tool-call turns extend the transcript: user message + assistant entry.
	if len(turn.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(turn.Messages))
	}
	if turn.Messages[1].Role != transcript.RoleAssistant {
		t.Errorf("expected assistant extension, got %s", turn.Messages[1].Role)
	}
	if _, ok := turn.Messages[1].Content.(openaiToolTurn); !ok {
		t.Errorf("assistant extension should be vendor-native, got %T", turn.Messages[1].Content)
	}

	calls := turn.ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 structured tool call, got %d", len(calls))
	}
	if calls[0].Name != "execute_sql_query" {
		t.Errorf("unexpected call name %q", calls[0].Name)
	}
	if calls[0].Args["query"] != "SELECT * FROM users" {
		t.Errorf("unexpected args: %v", calls[0].Args)
	}
}

func TestOpenAIPriorMessagesThreaded(t *testing.T) {
	var seen []openaiMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req openaiRequest
		_ = json.Unmarshal(body, &req)
		seen = req.Messages
		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{Message: openaiMessage{Role: "assistant", Content: "ok"}}},
		})
	}))
	defer server.Close()

	prior := []transcript.Message{
		{Role: transcript.RoleUser, Content: "first"},
		{Role: transcript.RoleAssistant, Content: "answer"},
	}
	p := NewOpenAIProvider("test-key", "test-model", Transport{BaseURL: server.URL})
	turn, err := p.ProcessQuery(context.Background(), "second", nil, prior)
	if err != nil {
		t.Fatalf("ProcessQuery: %v", err)
	}

	if len(seen) != 3 {
		t.Fatalf("expected 3 wire messages, got %d", len(seen))
	}
	if seen[0].Content != "first" || seen[1].Content != "answer" || seen[2].Content != "second" {
		t.Errorf("history order broken: %+v", seen)
	}
	if len(turn.Messages) != 3 {
		t.Errorf("expected prior+user = 3 messages, got %d", len(turn.Messages))
	}
}

func TestOpenAIToolTurnRoundTrip(t *testing.T) {
	msgs := []transcript.Message{
		{Role: transcript.RoleAssistant, Content: openaiToolTurn{
			Content:   "checking",
			ToolCalls: []openaiToolCall{{ID: "call_1", Type: "function"}},
		}},
	}
	wire := toOpenAIMessages(msgs)
	if len(wire) != 1 {
		t.Fatalf("expected 1 wire message, got %d", len(wire))
	}
	if wire[0].Content != "checking" || len(wire[0].ToolCalls) != 1 {
		t.Errorf("tool turn did not round-trip: %+v", wire[0])
	}
}

func TestOpenAIAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "test-model", Transport{BaseURL: server.URL})
	_, err := p.ProcessQuery(context.Background(), "hi", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestOpenAINoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openaiResponse{})
	}))
	defer server.Close()

	p := NewOpenAIProvider("test-key", "test-model", Transport{BaseURL: server.URL})
	if _, err := p.ProcessQuery(context.Background(), "hi", nil, nil); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
