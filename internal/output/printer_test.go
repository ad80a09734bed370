package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrinterPlainMode(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(ModePlain, false, &buf)

	p.Banner("./server.py", "anthropic", []string{"list_tables", "execute_sql_query"})
	out := buf.String()
	if !strings.Contains(out, "./server.py") {
		t.Errorf("target missing from banner: %q", out)
	}
	if !strings.Contains(out, "ANTHROPIC") {
		t.Errorf("provider missing from banner: %q", out)
	}
	if !strings.Contains(out, "list_tables") {
		t.Errorf("tool names missing from banner: %q", out)
	}

	buf.Reset()
	p.Response("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("response text missing: %q", buf.String())
	}
}

func TestPrinterQuietMode(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(ModeQuiet, true, &buf)

	p.Banner("x", "openai", nil)
	p.Response("hello")
	p.Error(errors.New("boom"), true)
	p.Info("cleared")
	if buf.Len() != 0 {
		t.Errorf("quiet mode produced output: %q", buf.String())
	}
}

func TestPrinterTUIModeSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(ModeTUI, false, &buf)
	p.Response("hello")
	if buf.Len() != 0 {
		t.Errorf("TUI mode printer must not write: %q", buf.String())
	}
}

func TestPrinterErrorHint(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(ModePlain, false, &buf)
	p.Error(errors.New("rate limited"), true)
	if !strings.Contains(buf.String(), "transient") {
		t.Errorf("expected retry hint: %q", buf.String())
	}

	buf.Reset()
	p.Error(errors.New("invalid api key"), false)
	if strings.Contains(buf.String(), "transient") {
		t.Errorf("unexpected retry hint: %q", buf.String())
	}
}

func TestToolActivityVerboseOnly(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(ModePlain, false, &buf)
	p.ToolActivity("list_tables", nil)
	if buf.Len() != 0 {
		t.Errorf("tool activity printed without verbose: %q", buf.String())
	}

	buf.Reset()
	p = NewPrinterWithWriter(ModePlain, true, &buf)
	p.ToolActivity("describe_table", map[string]any{"table": "users"})
	out := buf.String()
	if !strings.Contains(out, "describe_table") || !strings.Contains(out, "users") {
		t.Errorf("verbose tool activity missing call details: %q", out)
	}
}
