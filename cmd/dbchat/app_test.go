package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/exedev/dbchat/internal/config"
)

func TestUnknownProviderFailsBeforeConnect(t *testing.T) {
	// The action would try to connect; an unknown provider must fail in
	// Before, so the action is never reached.
	err := newApp().Run(context.Background(), []string{"dbchat", "--provider", "mistral", "server.py"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "mistral") {
		t.Errorf("error should name the provider, got %v", err)
	}
}

func TestMissingServerTarget(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "absent.json")
	err := newApp().Run(context.Background(), []string{"dbchat", "--config", configPath})
	if err == nil {
		t.Fatal("expected error when no server target is given")
	}
	if !strings.Contains(err.Error(), "usage") {
		t.Errorf("error = %v", err)
	}
}

func TestInitWritesConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "dbchat.json")

	err := newApp().Run(context.Background(), []string{"dbchat", "--config", configPath, "init"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.TranscriptWindow != 20 {
		t.Errorf("transcript window = %d", cfg.TranscriptWindow)
	}
}

func TestTooManyArguments(t *testing.T) {
	err := newApp().Run(context.Background(), []string{"dbchat", "one.py", "two.py"})
	if err == nil {
		t.Fatal("expected error for extra arguments")
	}
}
