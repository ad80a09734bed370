package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/exedev/dbchat/internal/transcript"
)

// AnthropicProvider adapts the Anthropic Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates the adapter. An empty apiKey defers to the
// SDK's environment lookup (ANTHROPIC_API_KEY).
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	c := anthropic.NewClient(opts...)
	return &AnthropicProvider{
		client: &c,
		model:  model,
	}
}

func (p *AnthropicProvider) ProcessQuery(ctx context.Context, query string, tools []ToolDef, prior []transcript.Message) (*Turn, error) {
	messages := append([]transcript.Message{}, prior...)
	messages = append(messages, transcript.Message{Role: transcript.RoleUser, Content: query})

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1000,
		Messages:  toAnthropicMessages(messages),
		Tools:     toAnthropicTools(tools),
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	turn := &Turn{Messages: messages}
	var parts []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			parts = append(parts, block.Text)
			turn.Content = append(turn.Content, ContentBlock{Type: "text", Text: block.Text})
		case "tool_use":
			toolUse := block.AsToolUse()
			var args map[string]any
			_ = json.Unmarshal(toolUse.Input, &args)
			parts = append(parts, FormatToolCallMarker(toolUse.Name, args))
			turn.Content = append(turn.Content, ContentBlock{
				Type: "tool_call",
				ToolCall: &ToolCall{
					ID:   toolUse.ID,
					Name: toolUse.Name,
					Args: args,
				},
			})
		}
	}
	turn.Text = strings.Join(parts, "\n")

	return turn, nil
}

func toAnthropicMessages(msgs []transcript.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		text, ok := m.Text()
		if !ok {
			// Vendor-native structured entries from other adapters have
			// no Anthropic wire shape; skip them.
			continue
		}
		if m.Role == transcript.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		} else {
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}
	return out
}

// toAnthropicTools passes the catalog through; the Messages API takes the
// JSON-Schema input mapping as-is, no projection needed.
func toAnthropicTools(tools []ToolDef) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, td := range tools {
		props, _ := td.InputSchema["properties"].(map[string]any)
		schema := anthropic.ToolInputSchemaParam{
			Properties: props,
		}
		if req, ok := td.InputSchema["required"].([]any); ok {
			required := make([]string, len(req))
			for j, r := range req {
				required[j], _ = r.(string)
			}
			schema.Required = required
		}
		t := anthropic.ToolUnionParamOfTool(schema, td.Name)
		if td.Description != "" {
			t.OfTool.Description = param.NewOpt(td.Description)
		}
		out[i] = t
	}
	return out
}
