package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 40 {
		w = 80 // sensible default before WindowSizeMsg
	}
	innerW := w - 2

	header := m.renderHeader(innerW)
	chatPanel := chatBorder.Width(innerW).Render(m.chatContent())
	inputPanel := inputBorder.Width(innerW).Render(m.input.View())
	sbar := m.renderStatusBar(w)

	return header + "\n" + chatPanel + "\n" + inputPanel + "\n" + sbar
}

func (m Model) renderHeader(w int) string {
	title := titleStyle.Render("dbchat")
	info := fmt.Sprintf("  %s · %s", m.target, m.provider)
	return title + subtleStyle.Render(truncate(info, w-8))
}

// chatContent renders the transcript lines for the viewport.
func (m Model) chatContent() string {
	if !m.ready {
		return "connecting..."
	}

	wrapW := m.vp.Width - 2
	var rendered []string
	for _, line := range m.lines {
		prefix := ""
		switch line.style {
		case "user":
			prefix = "> "
		}
		for _, wl := range wrapText(prefix+line.text, wrapW) {
			switch line.style {
			case "user":
				rendered = append(rendered, userStyle.Render(wl))
			case "assistant":
				rendered = append(rendered, assistantStyle.Render(wl))
			case "tool":
				rendered = append(rendered, toolStyle.Render(wl))
			case "error":
				rendered = append(rendered, errorStyle.Render(wl))
			default:
				rendered = append(rendered, subtleStyle.Render(wl))
			}
		}
	}
	if m.busy {
		rendered = append(rendered, subtleStyle.Render("thinking..."))
	}
	return strings.Join(rendered, "\n")
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.vp.SetContent(m.chatContent())
	m.vp.GotoBottom()
}

func (m Model) renderStatusBar(w int) string {
	left := fmt.Sprintf("%s · %d tools", m.provider, len(m.toolNames))
	if m.busy {
		left += " · thinking"
	}
	right := "enter:send · refresh:clear · esc:quit"

	leftW := runewidth.StringWidth(left)
	rightW := runewidth.StringWidth(right)
	spare := w - leftW - rightW - 2
	if spare < 1 {
		spare = 1
	}
	return statusBar.Width(w - 2).Render(left + strings.Repeat(" ", spare) + right)
}

// truncate cuts text to fit maxWidth display columns, appending an
// ellipsis when it was cut.
func truncate(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text
	}
	return runewidth.Truncate(text, maxWidth-1, "…")
}

// wrapText wraps a string to fit within maxWidth display columns,
// correctly handling emoji and CJK characters.
func wrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		maxWidth = 80
	}
	if len(text) == 0 {
		return []string{""}
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return []string{text}
	}

	var lines []string
	for runewidth.StringWidth(text) > maxWidth {
		colW := 0
		byteOff := 0
		for i, r := range text {
			rw := runewidth.RuneWidth(r)
			if colW+rw > maxWidth {
				break
			}
			colW += rw
			byteOff = i + len(string(r))
		}
		if byteOff == 0 {
			byteOff = len(string([]rune(text)[0]))
		}
		// Prefer breaking on a space within the last third
		cut := byteOff
		if idx := strings.LastIndex(text[:byteOff], " "); idx > byteOff/3 {
			cut = idx
		}
		lines = append(lines, text[:cut])
		text = strings.TrimLeft(text[cut:], " ")
	}
	if text != "" {
		lines = append(lines, text)
	}
	return lines
}
