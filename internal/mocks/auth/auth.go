package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.Navigator       = (*RecordingNavigator)(nil)
	_ ports.LoginOpener     = (*MockLoginOpener)(nil)
	_ ports.LaunchURLSource = (*StaticLaunchSource)(nil)
)

// ErrNotFound is returned by MemorySessionStore when the slot is empty.
var ErrNotFound error = apperrors.NotFound("session not found")

// MemorySessionStore is an in-memory session slot for unit tests.
// The Err fields inject failures; the counters record calls.
type MemorySessionStore struct {
	mu       sync.Mutex
	sess     *domainsession.Session
	LoadErr  error
	SaveErr  error
	ClearErr error

	Loads  int
	Saves  int
	Clears int
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// NewMemorySessionStoreWith creates a store already holding sess.
func NewMemorySessionStoreWith(sess domainsession.Session) *MemorySessionStore {
	return &MemorySessionStore{sess: &sess}
}

func (m *MemorySessionStore) Load(_ context.Context) (domainsession.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	if m.LoadErr != nil {
		return domainsession.Session{}, m.LoadErr
	}
	if m.sess == nil {
		return domainsession.Session{}, ErrNotFound
	}
	return *m.sess, nil
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainsession.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.sess = &sess
	return nil
}

func (m *MemorySessionStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Clears++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.sess = nil
	return nil
}

// Stored returns the stored session and whether the slot is occupied.
func (m *MemorySessionStore) Stored() (domainsession.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return domainsession.Session{}, false
	}
	return *m.sess, true
}

// RecordingNavigator records every route it is asked to show.
// OnNavigate, when set, runs synchronously inside Navigate.
type RecordingNavigator struct {
	mu         sync.Mutex
	routes     []domainsession.Route
	OnNavigate func(route domainsession.Route)
}

func (n *RecordingNavigator) Navigate(_ context.Context, route domainsession.Route) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	hook := n.OnNavigate
	n.mu.Unlock()
	if hook != nil {
		hook(route)
	}
}

// Routes returns a copy of the recorded routes.
func (n *RecordingNavigator) Routes() []domainsession.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domainsession.Route(nil), n.routes...)
}

// MockLoginOpener records opened URLs and optionally fails.
type MockLoginOpener struct {
	OpenFunc func(ctx context.Context, loginURL string) error
	Opened   []string
}

func (m *MockLoginOpener) Open(ctx context.Context, loginURL string) error {
	m.Opened = append(m.Opened, loginURL)
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, loginURL)
	}
	return nil
}

// StaticLaunchSource returns a fixed launch URL and counts calls.
type StaticLaunchSource struct {
	URL   string
	Err   error
	Calls int
}

func (s *StaticLaunchSource) LaunchURL(_ context.Context) (string, bool, error) {
	s.Calls++
	if s.Err != nil {
		return "", false, s.Err
	}
	return s.URL, s.URL != "", nil
}
