package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/exedev/dbchat/internal/transcript"
)

// OpenAIProvider adapts OpenAI-compatible chat completion APIs.
type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// OpenAI wire types.

type openaiRequest struct {
	Model      string          `json:"model"`
	Messages   []openaiMessage `json:"messages"`
	Tools      []openaiTool    `json:"tools,omitempty"`
	ToolChoice string          `json:"tool_choice,omitempty"`
}

type openaiMessage struct {
	Role      string           `json:"role"`
	Content   any              `json:"content,omitempty"`
	ToolCalls []openaiToolCall `json:"tool_calls,omitempty"`
}

type openaiTool struct {
	Type     string         `json:"type"` // "function"
	Function openaiFunction `json:"function"`
}

type openaiFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

type openaiToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"` // "function"
	Function openaiCallFunction `json:"function"`
}

type openaiCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Error   *openaiError   `json:"error,omitempty"`
}

type openaiChoice struct {
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// openaiToolTurn is the vendor-native assistant entry the adapter appends
// to the transcript when the model requested tools. It round-trips back
// into the wire shape on the next turn.
type openaiToolTurn struct {
	Content   string           `json:"content"`
	ToolCalls []openaiToolCall `json:"tool_calls"`
}

// NewOpenAIProvider creates the adapter. An empty apiKey reads
// OPENAI_API_KEY; transport.BaseURL overrides the default endpoint.
func NewOpenAIProvider(apiKey, model string, transport Transport) *OpenAIProvider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = "gpt-4o"
	}
	baseURL := transport.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &OpenAIProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  transport.Client(),
	}
}

func (p *OpenAIProvider) ProcessQuery(ctx context.Context, query string, tools []ToolDef, prior []transcript.Message) (*Turn, error) {
	messages := append([]transcript.Message{}, prior...)
	messages = append(messages, transcript.Message{Role: transcript.RoleUser, Content: query})

	apiTools := make([]openaiTool, len(tools))
	for i, td := range tools {
		apiTools[i] = openaiTool{
			Type: "function",
			Function: openaiFunction{
				Name:        td.Name,
				Description: td.Description,
				Parameters:  td.InputSchema,
			},
		}
	}

	reqBody := openaiRequest{
		Model:      p.model,
		Messages:   toOpenAIMessages(messages),
		Tools:      apiTools,
		ToolChoice: "auto",
	}

	resp, err := p.doRequest(ctx, reqBody)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices in response")
	}

	reply := resp.Choices[0].Message
	turn := &Turn{}
	var parts []string

	if len(reply.ToolCalls) > 0 {
		content, _ := reply.Content.(string)
		parts = append(parts, content)
		if content != "" {
			turn.Content = append(turn.Content, ContentBlock{Type: "text", Text: content})
		}
		// The tool-call turn extends the transcript in vendor-native form
		// so the follow-up request can replay it verbatim.
		messages = append(messages, transcript.Message{
			Role:    transcript.RoleAssistant,
			Content: openaiToolTurn{Content: content, ToolCalls: reply.ToolCalls},
		})
		for _, tc := range reply.ToolCalls {
			var args map[string]any
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
			parts = append(parts, FormatToolCallMarker(tc.Function.Name, args))
			turn.Content = append(turn.Content, ContentBlock{
				Type: "tool_call",
				ToolCall: &ToolCall{
					ID:   tc.ID,
					Name: tc.Function.Name,
					Args: args,
				},
			})
		}
	} else {
		content, _ := reply.Content.(string)
		parts = append(parts, content)
		turn.Content = append(turn.Content, ContentBlock{Type: "text", Text: content})
	}

	turn.Text = strings.Join(parts, "\n")
	turn.Messages = messages
	return turn, nil
}

func toOpenAIMessages(msgs []transcript.Message) []openaiMessage {
	out := make([]openaiMessage, 0, len(msgs))
	for _, m := range msgs {
		switch c := m.Content.(type) {
		case string:
			out = append(out, openaiMessage{Role: m.Role, Content: c})
		case openaiToolTurn:
			out = append(out, openaiMessage{Role: m.Role, Content: c.Content, ToolCalls: c.ToolCalls})
		}
	}
	return out
}

func (p *OpenAIProvider) doRequest(ctx context.Context, body openaiRequest) (*openaiResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	httpResp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai: API error %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp openaiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("openai: unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai: %s: %s", resp.Error.Type, resp.Error.Message)
	}
	return &resp, nil
}
