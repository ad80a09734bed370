package dbserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server exposing the store's read-only SQL
// tools: execute_sql_query, list_tables, and describe_table.
func NewServer(store *Store) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "dbchat-server", Version: "0.1.0"}, nil)

	server.AddTool(&mcpsdk.Tool{
		Name:        "execute_sql_query",
		Description: "Execute a read-only SQL query (SELECT only) and return the result rows as text",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "The SELECT statement to run",
				},
			},
			Required: []string{"query"},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var payload struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &payload); err != nil {
			return errorResult(fmt.Errorf("decode arguments: %w", err)), nil
		}
		out, err := store.ExecuteQuery(ctx, payload.Query)
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(out), nil
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        "list_tables",
		Description: "List the tables available in the database",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		names, err := store.ListTables(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		if len(names) == 0 {
			return textResult("no tables"), nil
		}
		out := ""
		for i, n := range names {
			if i > 0 {
				out += "\n"
			}
			out += n
		}
		return textResult(out), nil
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        "describe_table",
		Description: "Describe the columns of a table: name, type, and nullability",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"table": {
					Type:        "string",
					Description: "Name of the table to describe",
				},
			},
			Required: []string{"table"},
		},
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var payload struct {
			Table string `json:"table"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &payload); err != nil {
			return errorResult(fmt.Errorf("decode arguments: %w", err)), nil
		}
		out, err := store.DescribeTable(ctx, payload.Table)
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(out), nil
	})

	return server
}

// RunStdio serves the tools over stdin/stdout until ctx is cancelled.
func RunStdio(ctx context.Context, server *mcpsdk.Server) error {
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

// SSEHandler returns an HTTP handler serving the tools over SSE.
func SSEHandler(server *mcpsdk.Server) http.Handler {
	return mcpsdk.NewSSEHandler(func(r *http.Request) *mcpsdk.Server {
		return server
	})
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
	}
}
