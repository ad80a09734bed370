package llm

import (
	"net/http"
	"time"
)

// Transport configures the HTTP client used by adapters that speak to
// their vendor over plain net/http. It replaces any notion of a shared,
// globally mutated client: each adapter builds its own *http.Client from
// an explicit Transport at construction.
type Transport struct {
	// Timeout bounds a single vendor request. Zero means DefaultTimeout.
	Timeout time.Duration
	// NoFollowRedirects disables redirect following. The zero value
	// follows redirects, which is the documented default.
	NoFollowRedirects bool
	// BaseURL overrides the vendor endpoint (OpenAI-compatible servers,
	// test servers). Empty means the vendor default.
	BaseURL string
}

// DefaultTimeout bounds a vendor completion request.
const DefaultTimeout = 120 * time.Second

// Client materializes the configuration into an *http.Client.
func (t Transport) Client() *http.Client {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &http.Client{Timeout: timeout}
	if t.NoFollowRedirects {
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c
}
