package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/exedev/dbchat/internal/chat"
	"github.com/exedev/dbchat/internal/config"
	"github.com/exedev/dbchat/internal/llm"
	"github.com/exedev/dbchat/internal/mcp"
	"github.com/exedev/dbchat/internal/output"
	"github.com/exedev/dbchat/internal/transcript"
	"github.com/exedev/dbchat/internal/tui"
)

// loadConfig merges the config file with command line overrides.
// Flags win over the file, the file wins over defaults.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cmd.IsSet("provider") {
		cfg.Provider = cmd.String("provider")
	}
	if model := cmd.String("model"); model != "" {
		cfg.Model = model
	}
	if key := cmd.String("api-key"); key != "" {
		cfg.APIKey = key
	}
	if baseURL := cmd.String("base-url"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if cmd.Args().Len() > 0 {
		cfg.Server = cmd.Args().First()
	}
	return cfg, nil
}

func cmdInit(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := config.DefaultConfig()
	if cmd.IsSet("provider") {
		cfg.Provider = cmd.String("provider")
	}
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Config saved to %s\n", configPath)
	return nil
}

func runChat(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Server == "" {
		return fmt.Errorf("usage: dbchat <server> (or set \"server\" in %s)", cmd.String("config"))
	}

	kind, err := llm.ParseProviderKind(cfg.Provider)
	if err != nil {
		return err
	}

	provider, err := llm.New(llm.Config{
		Kind:   kind,
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
		Transport: llm.Transport{
			Timeout:           cfg.RequestTimeout,
			NoFollowRedirects: cfg.NoFollowRedirects,
			BaseURL:           cfg.BaseURL,
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := mcp.Dial(ctx, cfg.Server)
	if err != nil {
		return err
	}
	defer session.Close()

	store := transcript.New(cfg.TranscriptWindow)
	client := chat.NewClient(provider, session, store)

	forcePlain := cmd.Bool("plain")
	verbose := cmd.Bool("verbose")

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	if isTTY && !forcePlain {
		return tui.Run(client, cfg.Server, kind.String())
	}

	printer := output.NewPrinter(output.ModePlain, verbose)
	client.ObserveTools(printer.ToolActivity)
	toolNames, err := client.ToolNames(ctx)
	if err != nil {
		return fmt.Errorf("list tools: %w", err)
	}
	printer.Banner(cfg.Server, kind.String(), toolNames)

	return chat.RunLoop(ctx, client, printer, os.Stdin, os.Stdout)
}
