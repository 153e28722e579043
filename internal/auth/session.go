package auth

import (
	"sync"

	"libris/internal/entities"
)

// Session is the process-local record of the currently authenticated
// identity. It holds at most one identity at a time: a successful login
// replaces whatever was there before, and logout clears it.
//
// Managers never reach into this as ambient state; callers query the
// session and pass the identity (or its user id) into catalog calls
// explicitly.
type Session struct {
	mu       sync.RWMutex
	identity *entities.UserIdentity
}

// NewSession returns an empty (anonymous) session.
func NewSession() *Session {
	return &Session{}
}

// Replace installs identity as the current user, overwriting any
// previous login.
func (s *Session) Replace(identity *entities.UserIdentity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *identity
	s.identity = &copied
}

// Clear removes the current identity. Idempotent.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
}

// Current returns a copy of the current identity, or false when the
// session is anonymous.
func (s *Session) Current() (*entities.UserIdentity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil, false
	}
	copied := *s.identity
	return &copied, true
}

// IsActive reports whether an identity is currently populated.
func (s *Session) IsActive() bool {
	_, ok := s.Current()
	return ok
}

// UserID returns the current user's id, or 0 when anonymous.
func (s *Session) UserID() uint {
	id, ok := s.Current()
	if !ok {
		return 0
	}
	return id.ID
}
