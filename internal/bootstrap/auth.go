package bootstrap

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/target/binwatch/config"
	"github.com/target/binwatch/internal/adapters/devauth"
	"github.com/target/binwatch/internal/adapters/external"
	"github.com/target/binwatch/internal/ports"
)

// LoginOptions contains configuration for the login opener.
type LoginOptions struct {
	Auth config.AuthConfig
	// Prefix is the trusted deep-link prefix the dev provider signs in with.
	Prefix string
	// Publisher receives dev logins; required when Auth.Mode is mock.
	Publisher devauth.Publisher
	Out       io.Writer
	Logger    *slog.Logger
}

// BuildLoginOpener creates the opener used by BeginLogin for the configured auth mode.
//
//nolint:ireturn // the opener implementation depends on the auth mode.
func BuildLoginOpener(opts LoginOptions) (ports.LoginOpener, error) {
	switch opts.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			DisplayName: opts.Auth.DevAuth.DisplayName,
			UserID:      opts.Auth.DevAuth.UserID,
			Email:       opts.Auth.DevAuth.Email,
			Prefix:      opts.Prefix,
		}, opts.Publisher, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		if opts.Logger != nil {
			opts.Logger.Warn("dev auth enabled: logins complete without the identity provider")
		}
		return prov, nil

	case config.AuthModeBackend, "":
		return external.NewOpener(opts.Auth.OpenerCommand, opts.Out, opts.Logger), nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", opts.Auth.Mode)
	}
}
