package session

import (
	"errors"
	"sync"
)

var (
	// ErrAlreadyConnected is returned when a user id already has a live
	// session. The existing session is left untouched.
	ErrAlreadyConnected = errors.New("the user is already logged in")

	// ErrNotConnected is returned on disconnect of a session that is not
	// registered (typically a second disconnect).
	ErrNotConnected = errors.New("the user isn't logged in")
)

// ActiveUser is the ephemeral binding of a verified identity to a live
// outbound channel. At most one exists per user id at any time.
type ActiveUser struct {
	UserID   string
	Username string
	Channel  Channel
}

// Registry is the source of truth for who is online right now. One RWMutex
// guards the map; snapshots are taken for fan-out so no send ever happens
// under the lock.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*ActiveUser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*ActiveUser)}
}

// Connect registers a new active user. A duplicate user id is rejected and
// the existing session is not disturbed.
func (r *Registry) Connect(userID, username string, ch Channel) (*ActiveUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; ok {
		return nil, ErrAlreadyConnected
	}

	user := &ActiveUser{UserID: userID, Username: username, Channel: ch}
	r.users[userID] = user
	return user, nil
}

// Disconnect removes the user and closes its channel. A second disconnect
// is an error, not a crash.
func (r *Registry) Disconnect(user *ActiveUser) error {
	r.mu.Lock()
	current, ok := r.users[user.UserID]
	if !ok || current != user {
		r.mu.Unlock()
		return ErrNotConnected
	}
	delete(r.users, user.UserID)
	r.mu.Unlock()

	user.Channel.Close(CloseNormal, "session ended")
	return nil
}

// IsOnline reports whether userID has a live session.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[userID]
	return ok
}

// ChannelFor returns the outbound channel for userID, or nil when offline.
func (r *Registry) ChannelFor(userID string) Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if user, ok := r.users[userID]; ok {
		return user.Channel
	}
	return nil
}

// Snapshot returns the current active users for fan-out.
func (r *Registry) Snapshot() []*ActiveUser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*ActiveUser, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}
