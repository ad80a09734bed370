// Package mediator executes the tool calls a provider turn requested and
// splices the raw results back into the turn text. It is the only
// component that performs network I/O against the tool session.
package mediator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/exedev/dbchat/internal/llm"
)

// ToolCaller is the slice of the tool session the mediator needs.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// markerPattern is the wire contract with the provider adapters: tool
// name of word/hyphen characters, args captured non-greedily up to the
// closing bracket.
var markerPattern = regexp.MustCompile(`\[Tool call: ([\w-]+) with args (.+?)\]`)

// Mediator resolves tool-call markers against a tool session.
type Mediator struct {
	session ToolCaller

	// Observe, when set, is told about each tool invocation just before
	// it runs (verbose output hooks in here).
	Observe func(name string, args map[string]any)
}

func New(session ToolCaller) *Mediator {
	return &Mediator{session: session}
}

// Resolve invokes every tool call in the turn, strictly in left-to-right
// reply order, and returns the turn text with each raw result appended as
// "\n[tool results: <result>]". Structured tool-call blocks are preferred
// when the turn carries them; text-only turns fall back to marker
// scanning. A failing tool invocation aborts the turn.
func (m *Mediator) Resolve(ctx context.Context, turn *llm.Turn) (string, error) {
	calls := turn.ToolCalls()
	if len(calls) == 0 {
		calls = ParseMarkers(turn.Text)
	}

	text := turn.Text
	for _, call := range calls {
		if m.Observe != nil {
			m.Observe(call.Name, call.Args)
		}
		result, err := m.session.CallTool(ctx, call.Name, call.Args)
		if err != nil {
			return "", fmt.Errorf("call tool %s: %w", call.Name, err)
		}
		text += fmt.Sprintf("\n[tool results: %s]", result)
	}
	return text, nil
}

// ParseMarkers extracts every tool-call marker from text in textual
// order. Argument payloads are parsed as JSON after normalizing single
// quotes; a malformed payload degrades to an empty argument mapping
// rather than aborting the scan.
func ParseMarkers(text string) []llm.ToolCall {
	var calls []llm.ToolCall
	for _, match := range markerPattern.FindAllStringSubmatch(text, -1) {
		calls = append(calls, llm.ToolCall{
			Name: match[1],
			Args: parseArgs(match[2]),
		})
	}
	return calls
}

func parseArgs(raw string) map[string]any {
	normalized := strings.ReplaceAll(raw, "'", `"`)
	var args map[string]any
	if err := json.Unmarshal([]byte(normalized), &args); err != nil || args == nil {
		return map[string]any{}
	}
	return args
}
