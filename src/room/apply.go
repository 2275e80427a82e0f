package room

import (
	"strings"

	"github.com/roomcast/roomcast/src/types"
)

// All functions in this file run on the Run goroutine only.

func (r *Room) addSession(sess *Session) error {
	if r.findUser(sess.Name()) >= 0 {
		return ErrNameTaken
	}
	r.users = append(r.users, types.User{Name: sess.Name()})
	r.appendNotice(sess.Name() + " joined the chat.")
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	r.logger.Info().Str("session_id", sess.ID).Str("name", sess.Name()).Msg("session joined")
	r.finishMutation(types.Event{Name: sess.Name(), Kind: types.EventJoined}, true)
	return nil
}

func (r *Room) removeSession(sess *Session) {
	r.mu.Lock()
	_, ok := r.sessions[sess.ID]
	delete(r.sessions, sess.ID)
	r.mu.Unlock()
	sess.Close()
	if !ok {
		// Rejected or never-joined session: nothing to broadcast.
		return
	}

	name := sess.Name()
	if i := r.findUser(name); i >= 0 {
		r.users = append(r.users[:i], r.users[i+1:]...)
	}
	r.appendNotice(name + " disconnected.")

	r.logger.Info().Str("session_id", sess.ID).Str("name", name).Msg("session left")
	r.finishMutation(types.Event{Name: name, Kind: types.EventLeft}, true)
}

// applyEvent mutates the room for one event. Events that change nothing
// (unknown command already filtered at decode, typing for an unknown user)
// trigger no broadcast.
func (r *Room) applyEvent(ev types.Event, publish bool) {
	switch ev.Kind {
	case types.EventMessage:
		r.messages = append(r.messages, ev.Name+": "+strings.TrimSpace(ev.Body))
	case types.EventStartedTyping, types.EventStoppedTyping:
		i := r.findUser(ev.Name)
		if i < 0 {
			r.logger.Warn().Str("name", ev.Name).Err(ErrUnknownUser).Msg("typing event dropped")
			return
		}
		r.users[i].IsTyping = ev.Kind == types.EventStartedTyping
	case types.EventJoined:
		// From the bridge: a user on another instance. No local session.
		if r.findUser(ev.Name) >= 0 {
			return
		}
		r.users = append(r.users, types.User{Name: ev.Name})
		r.appendNotice(ev.Name + " joined the chat.")
	case types.EventLeft:
		i := r.findUser(ev.Name)
		if i < 0 {
			return
		}
		r.users = append(r.users[:i], r.users[i+1:]...)
		r.appendNotice(ev.Name + " disconnected.")
	case types.EventNotice:
		r.appendNotice(ev.Body)
	default:
		r.logger.Warn().Str("kind", string(ev.Kind)).Msg("unhandled event kind")
		return
	}
	r.finishMutation(ev, publish)
}

// finishMutation builds the post-mutation snapshot, records it for the
// read side, fans it out, and optionally publishes the event to the
// bridge. Runs inside the same loop iteration as the mutation, so no
// session can ever observe a half-updated state.
func (r *Room) finishMutation(ev types.Event, publish bool) {
	snap := r.buildSnapshot()

	r.mu.Lock()
	r.last = snap
	b := r.bridge
	r.mu.Unlock()

	r.broadcast(snap)

	if publish && b != nil && b.Available() {
		if err := b.Publish(ev); err != nil {
			r.logger.Error().Err(err).Msg("bridge publish failed")
		}
	}
}

// buildSnapshot copies the canonical state into an immutable value.
func (r *Room) buildSnapshot() types.RoomState {
	users := make([]types.User, len(r.users))
	copy(users, r.users)
	messages := make([]string, len(r.messages))
	copy(messages, r.messages)
	return types.RoomState{Users: users, Messages: messages}
}

// broadcast hands the snapshot to every registered session. Sends are
// non-blocking: a session whose queue is full misses this frame (it will
// catch up on the next one, snapshots are cumulative) rather than stall
// the loop or its peers. Failed deliveries do not deregister the session
// here; that happens through the session's own error path.
func (r *Room) broadcast(snap types.RoomState) {
	// Copy the registry to avoid holding the lock during sends.
	r.mu.RLock()
	targets := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		targets = append(targets, sess)
	}
	r.mu.RUnlock()

	for _, sess := range targets {
		select {
		case sess.Send <- snap:
		default:
			r.logger.Warn().Str("session_id", sess.ID).Msg("send buffer full, dropping snapshot")
		}
	}
}
