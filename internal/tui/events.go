package tui

// turnDoneMsg carries the outcome of a query turn run off the Update
// loop.
type turnDoneMsg struct {
	Response string
	Err      error
}

// toolsMsg carries the tool catalog fetched at startup and after a
// refresh.
type toolsMsg struct {
	Names []string
	Err   error
}
