package auth

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryUserStore keeps users in a mutex-guarded map. It backs the server
// when no database is configured and every auth test.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by normalized username
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*User)}
}

// ByUsername looks a user up by normalized username.
func (s *MemoryUserStore) ByUsername(username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// Insert stores a new user, assigning an id when absent.
func (s *MemoryUserStore) Insert(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return ErrUsernameTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copied := *user
	s.users[user.Username] = &copied
	return nil
}

// All returns every stored user.
func (s *MemoryUserStore) All() ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}
