package client

import (
	"errors"
	"sync"
)

// ErrSessionNotActive is returned when a request is attempted before the
// session holds credentials or after it has been invalidated.
var ErrSessionNotActive = errors.New("session is not active")

type sessionState int

const (
	sessionInit sessionState = iota
	sessionActive
	sessionInvalidated
)

// Session holds the bearer credentials the client attaches to every request.
// It is injected at client construction instead of being read from ambient
// storage per call, and moves from init to active to invalidated.
type Session struct {
	mu    sync.Mutex
	state sessionState
	token string
}

// NewSession returns a session in the init state; no Authorization header is
// sent until Activate provides a token.
func NewSession() *Session {
	return &Session{}
}

// Activate installs the bearer token. Reactivating a session with fresh
// credentials is allowed.
func (s *Session) Activate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = sessionActive
	s.token = token
}

// Invalidate drops the credentials; subsequent requests fail with
// ErrSessionNotActive instead of going out unauthenticated.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = sessionInvalidated
	s.token = ""
}

// Token returns the current bearer token. In the init state it returns an
// empty token and no error: the request goes out without the header and the
// server rejects it, matching the unauthenticated-call behavior.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == sessionInvalidated {
		return "", ErrSessionNotActive
	}
	return s.token, nil
}
