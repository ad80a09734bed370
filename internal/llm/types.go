package llm

import (
	"encoding/json"
	"fmt"

	"github.com/exedev/dbchat/internal/transcript"
)

// ToolDef describes a remotely invocable tool, as listed by the tool
// session. InputSchema is a JSON-Schema-like mapping; it is re-fetched
// every turn, so never cache projections of it.
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolCall is the model requesting a tool invocation.
type ToolCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ContentBlock is one item of a provider reply: plain text or a tool call.
type ContentBlock struct {
	Type     string    `json:"type"` // "text" or "tool_call"
	Text     string    `json:"text,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
}

// Turn is the result of one provider exchange. Text is the normalized
// reply with any tool requests rendered as inline markers; Content carries
// the same reply as structured blocks, so downstream code never has to
// re-parse the markers. Messages is the authoritative updated transcript
// and must be threaded into the next turn unchanged in order.
type Turn struct {
	Text     string
	Content  []ContentBlock
	Messages []transcript.Message
}

// ToolCalls returns the structured tool requests of this turn in reply order.
func (t *Turn) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, b := range t.Content {
		if b.Type == "tool_call" && b.ToolCall != nil {
			calls = append(calls, *b.ToolCall)
		}
	}
	return calls
}

// FormatToolCallMarker renders the textual tool-call marker. The exact
// shape is a wire contract with the mediator and must not drift:
//
//	[Tool call: <name> with args <args-as-json>]
func FormatToolCallMarker(name string, args map[string]any) string {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		raw = []byte("{}")
	}
	return fmt.Sprintf("[Tool call: %s with args %s]", name, raw)
}
