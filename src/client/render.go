package client

import (
	"strings"

	"github.com/roomcast/roomcast/src/types"
)

// SidebarWidth is the fixed width of the user list column.
const SidebarWidth = 20

const (
	verticalRule   = "│" // │
	horizontalRule = "─" // ─
	typingMarker   = "*"
)

// ViewportHeight returns the number of content rows for a terminal of the
// given height. The viewport grows with the message log so the user block
// stays pinned to the bottom even when history is short.
func ViewportHeight(termHeight, messageCount int) int {
	h := termHeight - 2
	if messageCount > h {
		return messageCount
	}
	return h
}

// RenderFrame lays out a room snapshot as a fixed-width frame: a left
// message column and a right sidebar separated by a vertical rule, then a
// horizontal rule. Messages fill from the top; the sidebar lists users
// bottom-aligned, typing users suffixed with a marker. The result is a
// pure function of its inputs.
//
// Users beyond the top of the viewport are cut off, and overlong lines
// are truncated to their column. Both are deliberate: the frame is always
// rectangular and never scrolls.
func RenderFrame(st types.RoomState, width, termHeight int) string {
	viewport := ViewportHeight(termHeight, len(st.Messages))
	leftWidth := width - SidebarWidth - 3 // two rules and a newline column
	if leftWidth < 0 {
		leftWidth = 0
	}
	userStart := viewport - len(st.Users)

	var b strings.Builder
	for i := 0; i < viewport; i++ {
		left := ""
		if i < len(st.Messages) {
			left = st.Messages[i]
		}
		b.WriteString(pad(left, leftWidth))
		b.WriteString(verticalRule)

		cell := ""
		if i >= userStart {
			u := st.Users[i-userStart]
			cell = u.Name
			if u.IsTyping {
				cell += typingMarker
			}
		}
		b.WriteString(pad(cell, SidebarWidth))
		b.WriteString(verticalRule)
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(horizontalRule, max(width-1, 0)))
	return b.String()
}

// pad truncates or space-fills s to exactly width cells.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
