package filestore

// Package filestore persists the session slot on the local filesystem, the
// on-device equivalent of the app's key-value storage.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// ErrNotFound is returned when no session is stored.
var ErrNotFound error = apperrors.NotFound("session not found")

// SessionStore keeps the session as <dir>/<key>.json. Writes go to a temporary
// file that is renamed over the slot, so a crash never leaves a partial record.
type SessionStore struct {
	dir  string
	path string
	mu   sync.Mutex
}

// NewSessionStore creates a store under dir for the given slot key.
func NewSessionStore(dir, key string) (*SessionStore, error) {
	if dir == "" {
		return nil, errors.New("session directory is required")
	}
	if key == "" {
		return nil, errors.New("session key is required")
	}
	if filepath.Base(key) != key {
		return nil, fmt.Errorf("invalid session key %q", key)
	}
	return &SessionStore{dir: dir, path: filepath.Join(dir, key+".json")}, nil
}

// Path returns the file backing the slot.
func (s *SessionStore) Path() string { return s.path }

func (s *SessionStore) Load(_ context.Context) (domainsession.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domainsession.Session{}, ErrNotFound
		}
		return domainsession.Session{}, apperrors.StoreUnavailable(err, "read session file")
	}

	sess, err := domainsession.ParseRecord(data)
	if err != nil {
		return domainsession.Session{}, apperrors.StoreUnavailable(err, "unmarshal session")
	}
	return sess, nil
}

func (s *SessionStore) Save(_ context.Context, sess domainsession.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return apperrors.StoreUnavailable(err, "create session directory")
	}

	tmp, err := os.CreateTemp(s.dir, ".session-*.tmp")
	if err != nil {
		return apperrors.StoreUnavailable(err, "create temp session file")
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		_ = os.Remove(tmpName)
		return apperrors.StoreUnavailable(err, "write session file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return apperrors.StoreUnavailable(err, "replace session file")
	}
	return nil
}

func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.StoreUnavailable(err, "remove session file")
	}
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		return errors.Join(err, f.Close())
	}
	if err := f.Sync(); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}
