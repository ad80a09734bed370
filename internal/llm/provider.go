// Package llm provides provider adapters that translate a conversation
// turn plus a tool catalog into vendor requests and normalize the replies
// into a common Turn shape. Adapters never execute tools; they only
// surface the model's tool requests.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/exedev/dbchat/internal/transcript"
)

// ProviderKind identifies an LLM vendor. The kind is resolved once at
// construction; call sites only ever see the Provider interface.
type ProviderKind int

const (
	ProviderAnthropic ProviderKind = iota
	ProviderOpenAI
	ProviderGemini
)

func (k ProviderKind) String() string {
	switch k {
	case ProviderAnthropic:
		return "anthropic"
	case ProviderOpenAI:
		return "openai"
	case ProviderGemini:
		return "gemini"
	default:
		return fmt.Sprintf("ProviderKind(%d)", int(k))
	}
}

// ParseProviderKind maps a provider name to its kind. An unknown name is
// an error; callers treat it as fatal before any connection is attempted.
func ParseProviderKind(name string) (ProviderKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "anthropic":
		return ProviderAnthropic, nil
	case "openai":
		return ProviderOpenAI, nil
	case "gemini":
		return ProviderGemini, nil
	default:
		return 0, fmt.Errorf("unsupported LLM provider: %q (use anthropic, openai, or gemini)", name)
	}
}

// Provider is the adapter contract shared by all vendors.
//
// ProcessQuery appends query as a new user message to prior (or starts a
// fresh transcript when prior is nil), submits the transcript plus the
// tool catalog to the vendor, and returns the normalized Turn. Vendor
// failures propagate unchanged; there is no retry at this layer.
type Provider interface {
	ProcessQuery(ctx context.Context, query string, tools []ToolDef, prior []transcript.Message) (*Turn, error)
}
