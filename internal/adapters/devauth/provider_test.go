package devauth

import (
	"context"
	"testing"

	domainsession "github.com/target/binwatch/internal/domain/session"
	"github.com/target/binwatch/internal/redirect"
)

func TestNewProvider_Validation(t *testing.T) {
	hub := redirect.NewHub(nil)
	if _, err := NewProvider(Config{Prefix: "app-scheme://auth"}, hub, nil); err == nil {
		t.Fatal("expected error for missing DisplayName")
	}
	if _, err := NewProvider(Config{DisplayName: "Dev"}, hub, nil); err == nil {
		t.Fatal("expected error for missing Prefix")
	}
	if _, err := NewProvider(Config{DisplayName: "Dev", Prefix: "app-scheme://auth"}, nil, nil); err == nil {
		t.Fatal("expected error for missing publisher")
	}
}

func TestProvider_OpenPublishesTrustedDeepLink(t *testing.T) {
	hub := redirect.NewHub(nil)
	var links []string
	hub.Subscribe(func(_ context.Context, ev domainsession.RedirectEvent) {
		links = append(links, ev.URL)
	})

	prov, err := NewProvider(Config{
		DisplayName: "Dev User",
		UserID:      "dev-user",
		Email:       "dev@example.com",
		Prefix:      "app-scheme://auth",
	}, hub, nil)
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}

	if err := prov.Open(context.Background(), "https://api.example.com/auth/google"); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := prov.Open(context.Background(), "https://api.example.com/auth/google"); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 published links, got %d", len(links))
	}

	dec := redirect.Decoder{TrustedPrefix: "app-scheme://auth", RequireTrustedPrefix: true}
	first, ok := dec.Decode(links[0]).(domainsession.Valid)
	if !ok {
		t.Fatalf("published link did not decode: %s", links[0])
	}
	if first.Session.DisplayName != "Dev User" {
		t.Fatalf("unexpected display name: %q", first.Session.DisplayName)
	}
	if first.Session.Extra["email"] != "dev@example.com" || first.Session.Extra["id"] != "dev-user" {
		t.Fatalf("unexpected extra fields: %+v", first.Session.Extra)
	}
	second := dec.Decode(links[1]).(domainsession.Valid)
	if first.Session.Extra["login_id"] == second.Session.Extra["login_id"] {
		t.Fatal("login ids should differ between logins")
	}
	if prov.session.Extra["login_id"] != nil {
		t.Fatal("Open must not mutate the configured identity")
	}
}
