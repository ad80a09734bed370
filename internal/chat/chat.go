// Package chat runs the conversation: one query at a time through the
// provider adapter, the tool mediator, and the transcript store.
package chat

import (
	"context"
	"fmt"

	"github.com/exedev/dbchat/internal/llm"
	"github.com/exedev/dbchat/internal/mediator"
	"github.com/exedev/dbchat/internal/transcript"
)

// Session is the slice of the tool-execution session the chat layer uses.
type Session interface {
	mediator.ToolCaller
	ListTools(ctx context.Context) ([]llm.ToolDef, error)
	BeginQuery() error
	EndQuery()
	Target() string
}

// Client ties a provider adapter, a tool session, and a transcript store
// into a turn pipeline.
type Client struct {
	provider llm.Provider
	session  Session
	store    *transcript.Store
	med      *mediator.Mediator
}

func NewClient(provider llm.Provider, session Session, store *transcript.Store) *Client {
	return &Client{
		provider: provider,
		session:  session,
		store:    store,
		med:      mediator.New(session),
	}
}

// Store exposes the transcript store (the refresh command clears it).
func (c *Client) Store() *transcript.Store {
	return c.store
}

// ObserveTools registers fn to be called for every tool invocation a
// turn performs, before the call runs.
func (c *Client) ObserveTools(fn func(name string, args map[string]any)) {
	c.med.Observe = fn
}

// ProcessQuery runs one full turn: re-fetch the tool catalog, submit the
// query with the prior transcript, resolve any requested tool calls, and
// commit the updated transcript. On failure the transcript is left
// untouched, so the history up to the failed turn stays usable.
func (c *Client) ProcessQuery(ctx context.Context, query string) (string, error) {
	if err := c.session.BeginQuery(); err != nil {
		return "", err
	}
	defer c.session.EndQuery()

	// Descriptors may change between turns; always re-fetch.
	tools, err := c.session.ListTools(ctx)
	if err != nil {
		return "", fmt.Errorf("list tools: %w", err)
	}

	turn, err := c.provider.ProcessQuery(ctx, query, tools, c.store.Messages())
	if err != nil {
		return "", err
	}

	text, err := c.med.Resolve(ctx, turn)
	if err != nil {
		return "", err
	}

	// The turn's message sequence is authoritative; the assistant text
	// (with tool results spliced in) closes out the turn.
	c.store.Replace(turn.Messages)
	c.store.Append(transcript.RoleAssistant, text)

	return text, nil
}

// ToolNames lists the server's current tool names for the banner.
func (c *Client) ToolNames(ctx context.Context) ([]string, error) {
	tools, err := c.session.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tools))
	for i, td := range tools {
		names[i] = td.Name
	}
	return names, nil
}
