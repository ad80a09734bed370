package llm

import "fmt"

// Config holds what is needed to construct a provider adapter.
type Config struct {
	Kind      ProviderKind
	Model     string // empty selects the vendor default
	APIKey    string // empty falls back to the vendor's env var
	Transport Transport
}

// New creates the adapter for the configured provider kind. The kind is
// the only dispatch point; everything downstream works against Provider.
func New(cfg Config) (Provider, error) {
	switch cfg.Kind {
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Transport), nil
	case ProviderGemini:
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.Transport), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider kind: %v", cfg.Kind)
	}
}
