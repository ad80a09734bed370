package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/exedev/dbchat/internal/dbserver"
)

var version = "dev"

func newApp() *cli.Command {
	return &cli.Command{
		Name:        "dbchat-server",
		Usage:       "MCP server exposing read-only SQL tools over a SQLite database",
		Version:     version,
		Description: "Serves execute_sql_query, list_tables, and describe_table over stdio\n(the default) or SSE when --listen is given.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the SQLite database file",
				Value: "dbchat.db",
			},
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Serve over SSE on this address (e.g. :8080) instead of stdio",
			},
		},
		Action: runServer,
	}
}

func runServer(ctx context.Context, cmd *cli.Command) error {
	store, err := dbserver.Open(cmd.String("db"))
	if err != nil {
		return err
	}
	defer store.Close()

	server := dbserver.NewServer(store)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := cmd.String("listen"); addr != "" {
		httpServer := &http.Server{Addr: addr, Handler: dbserver.SSEHandler(server)}
		go func() {
			<-ctx.Done()
			_ = httpServer.Close()
		}()
		fmt.Fprintf(os.Stderr, "dbchat-server listening on %s\n", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}

	return dbserver.RunStdio(ctx, server)
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
