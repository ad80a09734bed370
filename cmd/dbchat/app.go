package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/exedev/dbchat/internal/llm"
)

// version is set via ldflags at build time.
// e.g. -ldflags "-X main.version=1.2.3"
var version = "dev"

// newApp creates the CLI application with all flags.
func newApp() *cli.Command {
	return &cli.Command{
		Name:        "dbchat",
		Usage:       "Chat with your database through an MCP tool server",
		Version:     version,
		UsageText:   "dbchat [options] <server>",
		ArgsUsage:   "<server>",
		Description: "dbchat connects an LLM to an MCP server and runs an interactive query loop.\nThe server target is a script path (.py, .js), an npm package, a command line,\nor an http(s) URL for an SSE server.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "LLM provider: anthropic, openai, gemini",
				Value:   "anthropic",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Override the provider's default model",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "API key (falls back to the provider's env var)",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Override the vendor endpoint (OpenAI-compatible servers)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "dbchat.json",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Plain line output (no TUI)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show tool call activity",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write a default config file",
				Action: cmdInit,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			// Unknown providers fail here, before anything connects.
			if _, err := llm.ParseProviderKind(cmd.String("provider")); err != nil {
				return ctx, err
			}
			return ctx, nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() > 1 {
				return fmt.Errorf("expected one server target, got %d", cmd.Args().Len())
			}
			return runChat(ctx, cmd)
		},
	}
}
