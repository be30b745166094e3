// Package memstore keeps the session slot in process memory. It backs
// SESSION_STORE=memory for demos and end-to-end tests; nothing survives a restart.
package memstore

import (
	"context"
	"maps"
	"sync"

	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is a mutex-guarded single session slot.
type SessionStore struct {
	mu   sync.RWMutex
	sess *domainsession.Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Load(_ context.Context) (domainsession.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return domainsession.Session{}, apperrors.NotFound("session not found")
	}
	return copySession(*s.sess), nil
}

func (s *SessionStore) Save(_ context.Context, sess domainsession.Session) error {
	cp := copySession(sess)
	s.mu.Lock()
	s.sess = &cp
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.sess = nil
	s.mu.Unlock()
	return nil
}

// copySession detaches the top-level Extra map so callers cannot mutate the slot.
func copySession(sess domainsession.Session) domainsession.Session {
	sess.Extra = maps.Clone(sess.Extra)
	return sess
}
