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

// GeminiProvider adapts Google's Gemini generateContent API.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Gemini wire types.

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFuncDecl `json:"functionDeclarations"`
}

type geminiFuncDecl struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Parameters  geminiSchema `json:"parameters"`
}

type geminiSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]geminiProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

type geminiProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGeminiProvider creates the adapter. An empty apiKey reads
// GEMINI_API_KEY, then GOOGLE_API_KEY.
func NewGeminiProvider(apiKey, model string, transport Transport) *GeminiProvider {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	baseURL := transport.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  transport.Client(),
	}
}

func (p *GeminiProvider) ProcessQuery(ctx context.Context, query string, tools []ToolDef, prior []transcript.Message) (*Turn, error) {
	messages := append([]transcript.Message{}, prior...)
	messages = append(messages, transcript.Message{Role: transcript.RoleUser, Content: query})

	req := geminiRequest{
		Contents: toGeminiHistory(prior),
	}
	req.Contents = append(req.Contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: query}},
	})
	if len(tools) > 0 {
		req.Tools = []geminiTool{{FunctionDeclarations: projectGeminiTools(tools)}}
	}

	resp, err := p.doRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: no candidates in response")
	}

	turn := &Turn{Messages: messages}
	var parts []string
	// Gemini supplies no tool-call IDs; synthesize stable ones per turn.
	callID := 0
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			parts = append(parts, part.Text)
			turn.Content = append(turn.Content, ContentBlock{Type: "text", Text: part.Text})
		}
		if part.FunctionCall != nil {
			args := part.FunctionCall.Args
			parts = append(parts, FormatToolCallMarker(part.FunctionCall.Name, args))
			turn.Content = append(turn.Content, ContentBlock{
				Type: "tool_call",
				ToolCall: &ToolCall{
					ID:   fmt.Sprintf("gemini-call-%d", callID),
					Name: part.FunctionCall.Name,
					Args: args,
				},
			})
			callID++
		}
	}
	turn.Text = strings.Join(parts, "\n")

	return turn, nil
}

// toGeminiHistory reshapes prior messages into Gemini's native history:
// user stays user, assistant becomes model, each as a single text part.
// Messages whose content is not a plain string are dropped.
func toGeminiHistory(msgs []transcript.Message) []geminiContent {
	var out []geminiContent
	for _, m := range msgs {
		text, ok := m.Text()
		if !ok {
			continue
		}
		switch m.Role {
		case transcript.RoleUser:
			out = append(out, geminiContent{Role: "user", Parts: []geminiPart{{Text: text}}})
		case transcript.RoleAssistant:
			out = append(out, geminiContent{Role: "model", Parts: []geminiPart{{Text: text}}})
		}
	}
	return out
}

func (p *GeminiProvider) doRequest(ctx context.Context, body geminiRequest) (*geminiResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	httpResp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini: API error %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp geminiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("gemini: unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("gemini: %s (code %d)", resp.Error.Message, resp.Error.Code)
	}
	return &resp, nil
}
