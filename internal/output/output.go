package output

// Mode represents the output mode.
type Mode int

const (
	// ModeTUI is the interactive terminal UI mode; the TUI owns the screen.
	ModeTUI Mode = iota
	// ModePlain is the plain read/print loop mode.
	ModePlain
	// ModeQuiet suppresses styled output.
	ModeQuiet
)
