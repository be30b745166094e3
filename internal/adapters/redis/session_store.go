package redis

// Package redis provides Redis-based adapters for the binwatch client.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/ports"
)

// DefaultKey is the slot holding the JSON-serialized session.
const DefaultKey = "user"

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the current session in a single Redis key. The value has no
// TTL; it lives until Clear is called.
type SessionStore struct {
	client redis.UniversalClient
	key    string
}

// NewSessionStore creates a store using the default "user" key.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, key: DefaultKey}
}

// NewSessionStoreWithKey creates a store under prefix+key, so several devices or
// profiles can share one Redis.
func NewSessionStoreWithKey(client redis.UniversalClient, prefix, key string) *SessionStore {
	if key == "" {
		key = DefaultKey
	}
	return &SessionStore{client: client, key: prefix + key}
}

// Key returns the Redis key backing the slot.
func (s *SessionStore) Key() string { return s.key }

func (s *SessionStore) Load(ctx context.Context) (domainsession.Session, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainsession.Session{}, ErrNotFound
		}
		return domainsession.Session{}, apperrors.StoreUnavailable(err, "redis get session")
	}

	sess, err := domainsession.ParseRecord([]byte(data))
	if err != nil {
		return domainsession.Session{}, apperrors.StoreUnavailable(err, "unmarshal session")
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess domainsession.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// SET replaces the value in one step, so readers never see a partial record.
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return apperrors.StoreUnavailable(err, "redis set session")
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return apperrors.StoreUnavailable(err, "redis delete session")
	}
	return nil
}

// ErrNotFound is returned when no session is stored.
var ErrNotFound error = apperrors.NotFound("session not found")
