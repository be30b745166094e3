package session

// Package session contains domain-level types for the locally persisted session.
// It is pure and free of storage/transport concerns.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// DisplayNameField is the provider field holding the user's display name.
const DisplayNameField = "display_name"

// Session is the authenticated identity record obtained from the identity provider.
// Only DisplayName is interpreted; every other provider field is carried in Extra
// untouched and written back verbatim.
type Session struct {
	DisplayName string
	Extra       map[string]any
}

var errNotRecord = errors.New("session payload must be a JSON object")

// ParseRecord parses a JSON object into a Session.
func ParseRecord(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// MarshalJSON flattens the session into a single JSON object.
func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Record())
}

// UnmarshalJSON accepts any JSON object; other JSON values are rejected. Numbers are
// kept as json.Number so provider ids survive unrounded. A display_name that is not a
// non-empty string stays in Extra so Record returns it unchanged.
func (s *Session) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errNotRecord
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return fmt.Errorf("decode session record: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode session record: trailing data after object")
	}

	var out Session
	if name, ok := record[DisplayNameField].(string); ok && name != "" {
		out.DisplayName = name
		delete(record, DisplayNameField)
	}
	if len(record) > 0 {
		out.Extra = record
	}
	*s = out
	return nil
}

// Record returns the session as a plain map, the shape the provider sent.
func (s Session) Record() map[string]any {
	record := make(map[string]any, len(s.Extra)+1)
	maps.Copy(record, s.Extra)
	if s.DisplayName != "" {
		record[DisplayNameField] = s.DisplayName
	}
	return record
}

// Equal reports whether two sessions carry the same record. Records are compared in
// their JSON form so 42 and json.Number("42") are the same value.
func (s Session) Equal(other Session) bool {
	a, errA := json.Marshal(s.Record())
	b, errB := json.Marshal(other.Record())
	if errA != nil || errB != nil {
		return reflect.DeepEqual(s.Record(), other.Record())
	}
	return bytes.Equal(a, b)
}

// State is the resolver's view of the user's authentication status.
type State string

const (
	StateChecking        State = "checking"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// Route identifies the screen the host should display.
type Route string

const (
	RouteLogin Route = "login"
	RouteHome  Route = "home"
)

// RouteFor returns the screen matching a settled state.
func RouteFor(st State) Route {
	if st == StateAuthenticated {
		return RouteHome
	}
	return RouteLogin
}

// EventSource tells where a deep link came from.
type EventSource string

const (
	// SourceLaunch marks the URL the process was started with.
	SourceLaunch EventSource = "launch"
	// SourceLive marks a URL delivered while the process was already running.
	SourceLive EventSource = "live"
)

// RedirectEvent is a single deep link delivered to the application.
type RedirectEvent struct {
	ID         uuid.UUID
	URL        string
	Source     EventSource
	ReceivedAt time.Time
}
