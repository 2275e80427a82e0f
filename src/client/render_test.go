package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast/src/types"
)

func frameLines(t *testing.T, frame string) []string {
	t.Helper()
	return strings.Split(frame, "\n")
}

func TestViewportHeight(t *testing.T) {
	tests := []struct {
		name       string
		termHeight int
		messages   int
		want       int
	}{
		{"short history", 10, 3, 8},
		{"history exactly fits", 10, 8, 8},
		{"history overflows", 10, 12, 12},
		{"empty room", 10, 0, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ViewportHeight(tt.termHeight, tt.messages))
		})
	}
}

func TestRenderFrameGeometry(t *testing.T) {
	st := types.RoomState{
		Users:    []types.User{{Name: "alice"}},
		Messages: []string{"[SERVER] alice joined the chat."},
	}
	frame := RenderFrame(st, 60, 10)
	lines := frameLines(t, frame)

	// 8 content rows plus the horizontal rule.
	require.Len(t, lines, 9)
	for i, line := range lines {
		assert.Equal(t, 59, len([]rune(line)), "line %d has wrong width", i)
	}
	assert.Equal(t, strings.Repeat("─", 59), lines[8])

	// Two vertical rules per content row.
	for _, line := range lines[:8] {
		assert.Equal(t, 2, strings.Count(line, "│"))
	}
}

func TestRenderFrameMessagesFillFromTop(t *testing.T) {
	st := types.RoomState{
		Users:    []types.User{{Name: "alice"}},
		Messages: []string{"alice: one", "alice: two"},
	}
	lines := frameLines(t, RenderFrame(st, 60, 10))

	assert.True(t, strings.HasPrefix(lines[0], "alice: one"))
	assert.True(t, strings.HasPrefix(lines[1], "alice: two"))
	// Remaining left-column rows are blank padding.
	assert.True(t, strings.HasPrefix(lines[2], " "))
}

func TestRenderFrameSidebarBottomAligned(t *testing.T) {
	st := types.RoomState{
		Users:    []types.User{{Name: "alice", IsTyping: true}, {Name: "bob"}},
		Messages: []string{},
	}
	lines := frameLines(t, RenderFrame(st, 60, 10))

	// 8 content rows; users occupy the bottom two sidebar rows.
	sidebar := func(line string) string {
		parts := strings.Split(line, "│")
		require.Len(t, parts, 3)
		return parts[1]
	}
	for i := 0; i < 6; i++ {
		assert.Equal(t, strings.Repeat(" ", SidebarWidth), sidebar(lines[i]), "row %d should be blank", i)
	}
	assert.Equal(t, pad("alice*", SidebarWidth), sidebar(lines[6]))
	assert.Equal(t, pad("bob", SidebarWidth), sidebar(lines[7]))
}

func TestRenderFrameUserOverflowTruncatesTop(t *testing.T) {
	st := types.RoomState{
		Users: []types.User{
			{Name: "u1"}, {Name: "u2"}, {Name: "u3"}, {Name: "u4"}, {Name: "u5"},
		},
	}
	// termHeight 4 gives a 2-row viewport: only the last two users fit.
	frame := RenderFrame(st, 60, 4)
	assert.NotContains(t, frame, "u1")
	assert.NotContains(t, frame, "u2")
	assert.NotContains(t, frame, "u3")
	assert.Contains(t, frame, "u4")
	assert.Contains(t, frame, "u5")
}

func TestRenderFrameTruncatesLongMessage(t *testing.T) {
	long := strings.Repeat("m", 200)
	st := types.RoomState{
		Users:    []types.User{{Name: "alice"}},
		Messages: []string{"alice: " + long},
	}
	lines := frameLines(t, RenderFrame(st, 60, 10))
	// The frame stays rectangular: the long message is cut at the column.
	assert.Equal(t, 59, len([]rune(lines[0])))
}

func TestRenderFrameViewportGrowsWithHistory(t *testing.T) {
	messages := make([]string, 12)
	for i := range messages {
		messages[i] = "alice: hello"
	}
	st := types.RoomState{Users: []types.User{{Name: "alice"}}, Messages: messages}
	lines := frameLines(t, RenderFrame(st, 60, 10))
	// 12 content rows (one per message) plus the rule.
	assert.Len(t, lines, 13)
}

func TestRenderFrameDeterministic(t *testing.T) {
	st := types.RoomState{
		Users:    []types.User{{Name: "alice", IsTyping: true}},
		Messages: []string{"alice: hi"},
	}
	assert.Equal(t, RenderFrame(st, 80, 24), RenderFrame(st, 80, 24))
}
