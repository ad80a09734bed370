// Package output renders chat activity to the terminal via pterm.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// Printer wraps pterm for styled chat output. All methods are no-ops
// unless the mode is plain: the TUI draws its own screen and quiet mode
// suppresses everything.
type Printer struct {
	mode    Mode
	verbose bool
	writer  io.Writer
}

// NewPrinter creates a Printer for the given output mode.
func NewPrinter(mode Mode, verbose bool) *Printer {
	if verbose {
		pterm.EnableDebugMessages()
	}
	return &Printer{
		mode:    mode,
		verbose: verbose,
		writer:  os.Stdout,
	}
}

// NewPrinterWithWriter creates a Printer with a custom writer (for testing).
func NewPrinterWithWriter(mode Mode, verbose bool, w io.Writer) *Printer {
	if verbose {
		pterm.EnableDebugMessages()
	}
	return &Printer{
		mode:    mode,
		verbose: verbose,
		writer:  w,
	}
}

func (p *Printer) active() bool {
	return p.mode == ModePlain
}

// Banner prints the connection header: server target, provider, and the
// tools the server advertised.
func (p *Printer) Banner(target, provider string, toolNames []string) {
	if !p.active() {
		return
	}
	pterm.DefaultHeader.
		WithWriter(p.writer).
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack, pterm.Bold)).
		Println("dbchat")
	pterm.Info.WithWriter(p.writer).Printfln("Connected to %s", target)
	pterm.Info.WithWriter(p.writer).Printfln("Provider: %s", strings.ToUpper(provider))
	if len(toolNames) > 0 {
		pterm.Info.WithWriter(p.writer).Printfln("Available tools: %s", strings.Join(toolNames, ", "))
	}
	fmt.Fprintln(p.writer, "Type your queries, 'refresh' to clear history, or 'quit' to exit.")
}

// Response prints the final turn text.
func (p *Printer) Response(text string) {
	if !p.active() {
		return
	}
	fmt.Fprintf(p.writer, "\n%s %s\n", pterm.FgCyan.Sprint("Response:"), text)
}

// ToolActivity notes a tool invocation in verbose mode.
func (p *Printer) ToolActivity(name string, args map[string]any) {
	if !p.active() || !p.verbose {
		return
	}
	pterm.Debug.WithWriter(p.writer).Printfln("calling tool %s with args %v", name, args)
}

// Error reports a turn failure. The hint tells the user whether asking
// again is worth it.
func (p *Printer) Error(err error, retryable bool) {
	if !p.active() {
		return
	}
	pterm.Error.WithWriter(p.writer).Println(err)
	if retryable {
		pterm.Warning.WithWriter(p.writer).Println("This looks transient; asking again may work.")
	}
}

// Info prints a plain informational line (history cleared, shutdown).
func (p *Printer) Info(text string) {
	if !p.active() {
		return
	}
	pterm.Info.WithWriter(p.writer).Println(text)
}
