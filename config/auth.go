package config

import (
	"fmt"
	"strings"
)

const defaultLoginPath = "/auth/google"

// AuthMode represents the login mode for the application.
type AuthMode string

const (
	// AuthModeBackend opens the backend login endpoint in the system browser.
	AuthModeBackend AuthMode = "backend"
	// AuthModeMock completes login locally with the dev identity (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "backend", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: backend, mock)", v)
	}
}

// DevAuthConfig controls the mock login identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	DisplayName string `env:"DISPLAY_NAME" envDefault:"Dev User"`
	UserID      string `env:"USER_ID"      envDefault:"dev-user"`
	Email       string `env:"EMAIL"        envDefault:"dev@example.com"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines how login is performed.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"backend"`

	// LoginEndpoint is opened by BeginLogin. Defaults to the backend's /auth/google.
	LoginEndpoint string `env:"AUTH_LOGIN_ENDPOINT"`

	// DisplayNamePath is a JMESPath expression over the session record.
	DisplayNamePath string `env:"AUTH_DISPLAY_NAME_PATH" envDefault:"display_name"`

	// OpenerCommand opens URLs, e.g. "xdg-open". Empty prints the URL instead.
	OpenerCommand string `env:"AUTH_OPENER_COMMAND"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize trims values and derives the login endpoint from the backend base URL.
func (c *AuthConfig) Sanitize(backendBaseURL string) {
	if c.Mode == "" {
		c.Mode = AuthModeBackend
	}
	c.LoginEndpoint = strings.TrimSpace(c.LoginEndpoint)
	if c.LoginEndpoint == "" && backendBaseURL != "" {
		c.LoginEndpoint = strings.TrimRight(backendBaseURL, "/") + defaultLoginPath
	}
	c.DisplayNamePath = strings.TrimSpace(c.DisplayNamePath)
	c.OpenerCommand = strings.TrimSpace(c.OpenerCommand)
	c.DevAuth.DisplayName = strings.TrimSpace(c.DevAuth.DisplayName)
	if c.DevAuth.DisplayName == "" {
		c.DevAuth.DisplayName = "Dev User"
	}
}
