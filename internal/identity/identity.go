// Package identity holds the viewer's session identity with an explicit
// login/logout lifecycle. Components read it at call time rather than
// capturing a user id at construction, so an auth change takes effect
// without rebuilding the engine.
package identity

import "sync"

type Session struct {
	mu       sync.RWMutex
	userID   string
	userName string
}

func NewSession() *Session {
	return &Session{}
}

// Login installs the identity for the current session, replacing any
// previous one.
func (s *Session) Login(userID, userName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.userName = userName
}

// Logout clears the identity. Ownership-derived affordances fall back to
// the not-own branch until the next Login.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	s.userName = ""
}

func (s *Session) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) CurrentUserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID != ""
}
