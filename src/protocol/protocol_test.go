package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast/src/types"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  types.Event
		bad   bool
	}{
		{"message", "alice|message|hello there", types.Event{Name: "alice", Kind: types.EventMessage, Body: "hello there"}, false},
		{"empty body", "alice|message|", types.Event{Name: "alice", Kind: types.EventMessage}, false},
		{"started typing", "bob|startedTyping", types.Event{Name: "bob", Kind: types.EventStartedTyping}, false},
		{"stopped typing", "bob|stoppedTyping", types.Event{Name: "bob", Kind: types.EventStoppedTyping}, false},
		{"unknown command", "bob|unknowncmd", types.Event{}, true},
		{"no delimiter", "just some text", types.Event{}, true},
		{"empty name", "|message|hi", types.Event{}, true},
		{"pipe in body", "alice|message|a|b", types.Event{}, true},
		{"typing with body", "alice|startedTyping|x", types.Event{}, true},
		{"bridge kind rejected", "alice|joined", types.Event{}, true},
		{"empty frame", "", types.Event{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvent(tt.frame)
			if tt.bad {
				require.Error(t, err)
				var pe *ProtocolError
				assert.ErrorAs(t, err, &pe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestEncodeEventRoundTrip(t *testing.T) {
	events := []types.Event{
		{Name: "alice", Kind: types.EventMessage, Body: "hi there!"},
		{Name: "bob", Kind: types.EventStartedTyping},
		{Name: "bob", Kind: types.EventStoppedTyping},
	}
	for _, ev := range events {
		got, err := DecodeEvent(EncodeEvent(ev))
		require.NoError(t, err)
		assert.Equal(t, ev, got)
	}
}

func TestDecodeName(t *testing.T) {
	name, err := DecodeName("  alice \n")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	_, err = DecodeName("   ")
	assert.Error(t, err)

	_, err = DecodeName("al|ice")
	assert.Error(t, err)

	long := strings.Repeat("x", 50)
	name, err = DecodeName(long)
	require.NoError(t, err)
	assert.Len(t, name, MaxNameBytes)
}

func TestSnapshotRoundTrip(t *testing.T) {
	states := []types.RoomState{
		types.EmptyRoom(),
		{
			Users:    []types.User{{Name: "alice", IsTyping: true}, {Name: "bob"}},
			Messages: []string{"[SERVER] alice joined the chat.", "alice: hi"},
		},
	}
	for _, st := range states {
		data, err := EncodeSnapshot(st)
		require.NoError(t, err)
		got, err := DecodeSnapshot(data)
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
}

func TestDecodeSnapshotRejectsMalformed(t *testing.T) {
	_, err := DecodeSnapshot([]byte("not json"))
	require.Error(t, err)
	var pe *ProtocolError
	assert.ErrorAs(t, err, &pe)

	_, err = DecodeSnapshot([]byte(`{"users":[{"isTyping":true}],"messages":[]}`))
	assert.Error(t, err, "snapshot user without a name should fail validation")
}

func TestDecodeSnapshotNormalizesNilSlices(t *testing.T) {
	got, err := DecodeSnapshot([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, got.Users)
	assert.NotNil(t, got.Messages)
}
