package ports

// Package ports defines interfaces (hexagonal ports) for the client core.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainsession "github.com/target/binwatch/internal/domain/session"
)

// SessionStore persists the single current session slot.
type SessionStore interface {
	// Load returns the stored session, or a not-found error when the slot is empty.
	Load(ctx context.Context) (domainsession.Session, error)
	// Save replaces the stored session atomically.
	Save(ctx context.Context, sess domainsession.Session) error
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}

// LaunchURLSource reports the deep link the process was started with.
type LaunchURLSource interface {
	LaunchURL(ctx context.Context) (rawURL string, ok bool, err error)
}

// RedirectHandler receives deep links delivered while the process is running.
type RedirectHandler func(ctx context.Context, ev domainsession.RedirectEvent)

// RedirectSource surfaces launch and live deep links.
type RedirectSource interface {
	LaunchURLSource
	// Listen registers handler until ctx is done or release is called.
	Listen(ctx context.Context, handler RedirectHandler) (release func())
}

// Navigator switches the host to a screen.
type Navigator interface {
	Navigate(ctx context.Context, route domainsession.Route)
}

// LoginOpener hands the identity provider login endpoint to the system.
type LoginOpener interface {
	Open(ctx context.Context, loginURL string) error
}
