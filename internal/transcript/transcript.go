// Package transcript holds the ordered conversation history threaded
// across turns. The store is size-bounded: once the window is exceeded,
// the oldest entries are dropped first. Entries are never mutated after
// they are appended.
package transcript

import (
	"sync"
	"time"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// DefaultWindow is the number of messages retained per conversation.
const DefaultWindow = 20

// Message is a single role-tagged conversation entry. Content is usually
// a plain string; provider adapters may append vendor-native structured
// content (e.g. an assistant turn carrying tool calls).
type Message struct {
	Role      string    `json:"role"`
	Content   any       `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Text returns the message content when it is a plain string, and ""
// otherwise. Adapters that only understand textual history use this to
// skip structured entries.
func (m Message) Text() (string, bool) {
	s, ok := m.Content.(string)
	return s, ok
}

// Store is an ordered, size-bounded message sequence for one conversation.
// Turns are serialized by the orchestrator, but the store locks anyway so
// a UI snapshotting mid-turn sees a consistent view.
type Store struct {
	mu       sync.Mutex
	messages []Message
	window   int
}

// New creates a Store retaining at most window messages. A window of 0 or
// less falls back to DefaultWindow.
func New(window int) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{
		messages: make([]Message, 0, window),
		window:   window,
	}
}

// Append adds a message at the end of the transcript and evicts the
// oldest entries if the window is exceeded.
func (s *Store) Append(role string, content any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.evict()
}

// Replace swaps the transcript for the authoritative message sequence
// returned by a turn, then applies the window.
func (s *Store) Replace(messages []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages[:0], messages...)
	s.evict()
}

// Messages returns a copy of the current transcript in chronological order.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the current number of retained messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Clear drops the whole history (the interactive "refresh" command).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = s.messages[:0]
}

// Window returns the configured retention bound.
func (s *Store) Window() int {
	return s.window
}

func (s *Store) evict() {
	if len(s.messages) > s.window {
		// FIFO: keep the most recent window entries.
		keep := s.messages[len(s.messages)-s.window:]
		s.messages = append(s.messages[:0], keep...)
	}
}
