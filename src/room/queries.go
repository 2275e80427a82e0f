package room

import (
	"github.com/roomcast/roomcast/src/types"
)

// Read-side queries. These observe the latest finalized snapshot and the
// session registry; they never see a half-applied mutation.

// Snapshot returns the most recent room snapshot.
func (r *Room) Snapshot() types.RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// SessionCount returns the number of registered sessions.
func (r *Room) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sessions returns metadata for every registered session.
func (r *Room) Sessions() []types.SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]types.SessionInfo, 0, len(r.sessions))
	for _, sess := range r.sessions {
		infos = append(infos, sess.Info())
	}
	return infos
}

// SessionInfo returns metadata for one session, or nil if unknown.
func (r *Room) SessionInfo(id string) *types.SessionInfo {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	info := sess.Info()
	return &info
}

// TypingUsers returns the names of users currently marked as typing.
func (r *Room) TypingUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0)
	for _, u := range r.last.Users {
		if u.IsTyping {
			names = append(names, u.Name)
		}
	}
	return names
}
