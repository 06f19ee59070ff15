// Package session holds the mutable MiniMax configuration of one running
// session. A single *Session is shared by the configuration commands and the
// tool adapters; writes are last-writer-wins.
package session

import (
	"strings"
	"sync"

	"github.com/germanamz/minimax/pkg/minimax/credentials"
)

// State is a point-in-time copy of a Session.
type State struct {
	APIKey     string
	APIHost    string
	Configured bool
}

// Session is the session-scoped configuration. Configured implies a
// non-empty key.
type Session struct {
	mu         sync.RWMutex
	apiKey     string
	apiHost    string
	configured bool
}

// New seeds a Session from resolved credentials.
func New(creds credentials.Credentials) *Session {
	host := creds.APIHost
	if host == "" {
		host = credentials.DefaultAPIHost
	}

	return &Session{
		apiKey:     creds.APIKey,
		apiHost:    host,
		configured: creds.Configured && creds.APIKey != "",
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{APIKey: s.apiKey, APIHost: s.apiHost, Configured: s.configured}
}

// Configured reports whether the session holds a usable key.
func (s *Session) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.configured
}

// SetKey stores key and marks the session configured. A blank key clears the
// session instead.
func (s *Session) SetKey(key string) {
	key = strings.TrimSpace(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.apiKey = key
	s.configured = key != ""
}

// Clear removes the key and marks the session unconfigured.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apiKey = ""
	s.configured = false
}

// Invalidate marks the session unconfigured after the remote API rejected
// the key. The key itself is kept so it can still be shown masked.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configured = false
}

// MaskKey renders key as its first 8 and last 4 characters. Keys too short
// to elide anything are fully starred.
func MaskKey(key string) string {
	r := []rune(key)
	if len(r) <= 12 {
		return strings.Repeat("*", len(r))
	}

	return string(r[:8]) + "..." + string(r[len(r)-4:])
}
