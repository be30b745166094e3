package devauth

// Package devauth provides a config-driven login opener for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	domainsession "github.com/target/binwatch/internal/domain/session"
	"github.com/target/binwatch/internal/ports"
	"github.com/target/binwatch/internal/redirect"
)

var _ ports.LoginOpener = (*Provider)(nil)

// Publisher delivers a deep link as if the operating system had received it.
type Publisher interface {
	Publish(ctx context.Context, rawURL string) domainsession.RedirectEvent
}

// Config controls the dev auth provider behavior.
// DisplayName and Prefix are required; UserID and Email are optional.
type Config struct {
	DisplayName string
	UserID      string
	Email       string
	// Prefix is the trusted deep-link prefix the resolver accepts.
	Prefix string
}

// Provider implements ports.LoginOpener for local development.
// It short-circuits the identity provider round-trip: Open ignores the login endpoint
// and publishes a deep link carrying the configured identity.
type Provider struct {
	session   domainsession.Session
	prefix    string
	publisher Publisher
	logger    *slog.Logger
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config, publisher Publisher, logger *slog.Logger) (*Provider, error) {
	if cfg.DisplayName == "" {
		return nil, errors.New("dev auth: DisplayName is required")
	}
	if cfg.Prefix == "" {
		return nil, errors.New("dev auth: Prefix is required")
	}
	if publisher == nil {
		return nil, errors.New("dev auth: publisher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	extra := map[string]any{"provider": "dev"}
	if cfg.UserID != "" {
		extra["id"] = cfg.UserID
	}
	if cfg.Email != "" {
		extra["email"] = cfg.Email
	}
	return &Provider{
		session:   domainsession.Session{DisplayName: cfg.DisplayName, Extra: extra},
		prefix:    cfg.Prefix,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Open publishes the dev identity as a deep link. Each login carries a fresh login_id
// so repeated logins are distinguishable in logs.
func (p *Provider) Open(ctx context.Context, loginURL string) error {
	loginID, err := randomString(16)
	if err != nil {
		return fmt.Errorf("generate login id: %w", err)
	}

	sess := p.session
	sess.Extra = maps.Clone(p.session.Extra)
	sess.Extra["login_id"] = loginID

	link, err := redirect.Encode(p.prefix, sess)
	if err != nil {
		return fmt.Errorf("encode dev session: %w", err)
	}

	ev := p.publisher.Publish(ctx, link)
	p.logger.InfoContext(ctx, "dev login completed",
		"endpoint", loginURL,
		"event_id", ev.ID.String(),
		"login_id", loginID)
	return nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return s[:n], nil
}
