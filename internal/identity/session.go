package identity

import (
	"context"
	"fmt"

	"github.com/dreamware/petsclaws/internal/storage"
)

// Session identifies the user a request acts for. It is passed explicitly
// to every per-user operation instead of living in ambient state.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// SessionFor builds the session of u.
func SessionFor(u User) Session {
	return Session{UserID: u.ID, Email: u.Email, Name: u.Name}
}

// Sessions persists the "current user" pointer under storage.KeyCurrentUser,
// independently of the user list. The local CLI reads it at startup.
type Sessions struct {
	store storage.Store
}

// NewSessions creates the pointer store over s.
func NewSessions(s storage.Store) *Sessions {
	return &Sessions{store: s}
}

// Set records u as the current user. The password hash is not stored.
func (s *Sessions) Set(ctx context.Context, u User) error {
	return storage.WriteCollection(ctx, s.store, storage.KeyCurrentUser, u.Public())
}

// Current returns the current user, if any.
func (s *Sessions) Current(ctx context.Context) (User, bool, error) {
	u, found, err := storage.ReadCollection[User](ctx, s.store, storage.KeyCurrentUser)
	if err != nil || !found {
		return User{}, false, err
	}
	return u, true, nil
}

// Clear removes the pointer (logout).
func (s *Sessions) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, storage.KeyCurrentUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
