package memory

// Package memory provides an in-process session store for deployments without
// Redis and for tests. A restart loses all sessions, which matches the
// system's contract: there is no local table of record for federated users.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/fleetyard/fleet-ui-api/internal/domain/auth"
)

// SessionStore keeps sessions in a mutex-guarded map. All operations are safe
// under concurrent invocation; Get against a concurrently deleted token sees
// either the full session or not-found, never a partial read.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}
	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, err
		}
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of live sessions; used by tests and diagnostics.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
