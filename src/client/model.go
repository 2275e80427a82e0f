package client

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast/src/protocol"
	"github.com/roomcast/roomcast/src/types"
)

// allowedChars is the input allow-list. The pipe is absent: it frames the
// wire protocol and can never enter a message body.
const allowedChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 !?.,:;-_()\"'"

var promptStyle = lipgloss.NewStyle().Bold(true)

type snapshotMsg types.RoomState

type disconnectMsg struct{ err error }

// Model is the chat TUI. The bubbletea runtime serializes key handling
// with snapshot application, so the input buffer has exactly one writer;
// the sync loop (ReadSnapshot re-armed as a command) only ever produces
// messages. All transport writes happen on the update path, which keeps
// typing notifications strictly ordered before the message they narrate.
type Model struct {
	transport Transport
	username  string
	logger    zerolog.Logger

	input  []rune
	state  types.RoomState
	width  int
	height int

	err      error
	quitting bool
}

// NewModel creates the TUI model for an already-handshaken transport.
func NewModel(t Transport, username string, logger zerolog.Logger) Model {
	return Model{
		transport: t,
		username:  username,
		logger:    logger,
		state:     types.EmptyRoom(),
	}
}

// Err returns the transport error that ended the session, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return m.waitForSnapshot()
}

// waitForSnapshot blocks on the next server push. It terminates only the
// sync path on failure: the disconnect message quits the program without
// touching any in-flight input.
func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		st, err := m.transport.ReadSnapshot()
		if err != nil {
			return disconnectMsg{err: err}
		}
		return snapshotMsg(st)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		m.state = types.RoomState(msg)
		return m, m.waitForSnapshot()

	case disconnectMsg:
		m.err = msg.err
		m.quitting = true
		m.logger.Warn().Err(msg.err).Msg("lost connection to the server")
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey applies one keystroke to the input buffer and emits the wire
// events it implies. Typing transitions fire once per edge crossing:
// empty to non-empty sends startedTyping, non-empty to empty via
// backspace sends stoppedTyping.
func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := len(m.input)

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		m.transport.Close()
		return m, tea.Quit

	case tea.KeyEnter:
		if len(m.input) == 0 {
			return m, nil
		}
		body := string(m.input)
		m.input = nil
		// stoppedTyping must precede the message body on the wire.
		m.send(types.Event{Name: m.username, Kind: types.EventStoppedTyping})
		if strings.TrimSpace(body) != "" {
			m.send(types.Event{Name: m.username, Kind: types.EventMessage, Body: body})
		}
		return m, nil

	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}

	case tea.KeySpace:
		m.input = append(m.input, ' ')

	case tea.KeyRunes:
		for _, r := range key.Runes {
			if strings.ContainsRune(allowedChars, r) {
				m.input = append(m.input, r)
			}
		}
	}

	if before == 0 && len(m.input) > 0 {
		m.send(types.Event{Name: m.username, Kind: types.EventStartedTyping})
	} else if before > 0 && len(m.input) == 0 {
		m.send(types.Event{Name: m.username, Kind: types.EventStoppedTyping})
	}
	return m, nil
}

// send writes one event frame. Intentionally blocking: the input loop
// must not scan further keys until the event is on the wire, preserving
// event order.
func (m *Model) send(ev types.Event) {
	if err := m.transport.SendFrame(protocol.EncodeEvent(ev)); err != nil {
		m.logger.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("send failed")
	}
}

func (m Model) View() string {
	if m.quitting {
		if m.err != nil {
			return "Lost connection to the server.\n"
		}
		return ""
	}
	frame := RenderFrame(m.state, m.width, m.height)
	prompt := promptStyle.Render(m.username) + "> " + string(m.input)
	return frame + "\n" + prompt
}
