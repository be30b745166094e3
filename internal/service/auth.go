package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/ports"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// SessionEnder ends the current session. SessionResolver implements it.
type SessionEnder interface {
	Logout(ctx context.Context) error
}

// AuthServicePorts groups the collaborators of AuthService.
type AuthServicePorts struct {
	Opener   ports.LoginOpener // Required
	Sessions SessionEnder      // Required
}

// AuthServiceConfig configures login and display-name extraction.
type AuthServiceConfig struct {
	LoginEndpoint   string
	DisplayNamePath string            // JMESPath over the session record; defaults to display_name
	Evaluator       JMESPathEvaluator // Optional; defaults to go-jmespath
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Ports  AuthServicePorts
	Config AuthServiceConfig
	Logger *slog.Logger
}

// AuthService is the entry point for the login screen and the logout action.
type AuthService struct {
	opener    ports.LoginOpener
	sessions  SessionEnder
	endpoint  string
	namePath  string
	evaluator JMESPathEvaluator
	logger    *slog.Logger
}

// NewAuthService constructs a new AuthService. An invalid display-name expression is
// reported as a validation error.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Ports.Opener == nil {
		panic("LoginOpener is required")
	}
	if opts.Ports.Sessions == nil {
		panic("SessionEnder is required")
	}

	eval := opts.Config.Evaluator
	if eval == nil {
		eval = jmespathLibEvaluator{}
	}
	path := strings.TrimSpace(opts.Config.DisplayNamePath)
	if path == "" {
		path = domainsession.DisplayNameField
	}
	if err := eval.Validate(path); err != nil {
		return nil, apperrors.ValidationField("display_name_path",
			fmt.Sprintf("invalid display name expression %q: %v", path, err))
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		opener:    opts.Ports.Opener,
		sessions:  opts.Ports.Sessions,
		endpoint:  strings.TrimSpace(opts.Config.LoginEndpoint),
		namePath:  path,
		evaluator: eval,
		logger:    logger,
	}, nil
}

// BeginLogin hands the login endpoint to the system opener. The result of the
// identity provider round-trip arrives later as a deep link.
func (s *AuthService) BeginLogin(ctx context.Context) error {
	if s.endpoint == "" {
		return apperrors.ValidationField("login_endpoint", "login endpoint is not configured")
	}

	s.logger.InfoContext(ctx, "opening login endpoint", "endpoint", s.endpoint)
	if err := s.opener.Open(ctx, s.endpoint); err != nil {
		return fmt.Errorf("open login endpoint: %w", err)
	}
	return nil
}

// Logout ends the current session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// DisplayName evaluates the configured expression over the session record. A missing,
// empty or non-string result falls back to Session.DisplayName.
func (s *AuthService) DisplayName(sess domainsession.Session) string {
	if s.namePath == domainsession.DisplayNameField {
		return sess.DisplayName
	}

	out, err := s.evaluator.Evaluate(s.namePath, sess.Record())
	if err != nil {
		s.logger.Debug("display name expression failed", "path", s.namePath, "error", err)
		return sess.DisplayName
	}
	if name, ok := out.(string); ok && name != "" {
		return name
	}
	return sess.DisplayName
}
