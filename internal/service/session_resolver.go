package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/observability/metrics"
	"github.com/target/binwatch/internal/observability/statsd"
	"github.com/target/binwatch/internal/ports"
	"github.com/target/binwatch/internal/redirect"
)

const defaultLaunchURLTimeout = 2 * time.Second

// Transition triggers used for logging and metrics.
const (
	triggerStoredSession = "stored_session"
	triggerLaunchURL     = "launch_url"
	triggerLiveRedirect  = "live_redirect"
	triggerStartup       = "startup"
	triggerLogout        = "logout"
)

// SessionResolverPorts groups the collaborators the resolver drives.
type SessionResolverPorts struct {
	Store     ports.SessionStore    // Required
	Launch    ports.LaunchURLSource // Required
	Navigator ports.Navigator       // Required
}

// SessionResolverConfig tunes the resolver.
type SessionResolverConfig struct {
	Decoder          redirect.Decoder
	LaunchURLTimeout time.Duration // default 2s
	Metrics          statsd.Sink   // Optional
}

// SessionResolverOptions groups dependencies for SessionResolver.
type SessionResolverOptions struct {
	Ports  SessionResolverPorts
	Config SessionResolverConfig
	Logger *slog.Logger
}

// SessionResolver decides whether the user lands on the login screen or the home
// screen, and whether a deep link updates the stored session.
//
// All operations run one at a time: the start-up chain (read store, read launch URL,
// decode and persist) completes before any live redirect or logout is processed.
// The state only becomes authenticated after the session was persisted, and only
// becomes unauthenticated after the store was cleared.
type SessionResolver struct {
	store         ports.SessionStore
	launch        ports.LaunchURLSource
	nav           ports.Navigator
	decoder       redirect.Decoder
	launchTimeout time.Duration
	metrics       statsd.Sink
	logger        *slog.Logger

	opMu      sync.Mutex
	startOnce sync.Once
	started   chan struct{}

	stateMu sync.RWMutex
	state   domainsession.State
	current *domainsession.Session
}

// NewSessionResolver constructs a resolver in the checking state.
func NewSessionResolver(opts SessionResolverOptions) *SessionResolver {
	if opts.Ports.Store == nil {
		panic("SessionStore is required")
	}
	if opts.Ports.Launch == nil {
		panic("LaunchURLSource is required")
	}
	if opts.Ports.Navigator == nil {
		panic("Navigator is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Config.LaunchURLTimeout
	if timeout <= 0 {
		timeout = defaultLaunchURLTimeout
	}

	return &SessionResolver{
		store:         opts.Ports.Store,
		launch:        opts.Ports.Launch,
		nav:           opts.Ports.Navigator,
		decoder:       opts.Config.Decoder,
		launchTimeout: timeout,
		metrics:       opts.Config.Metrics,
		logger:        logger,
		started:       make(chan struct{}),
		state:         domainsession.StateChecking,
	}
}

// State returns the current state.
func (r *SessionResolver) State() domainsession.State {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

// Session returns the current session when authenticated.
func (r *SessionResolver) Session() (domainsession.Session, bool) {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	if r.current == nil {
		return domainsession.Session{}, false
	}
	return *r.current, true
}

// Started is closed once start-up resolution has settled.
func (r *SessionResolver) Started() <-chan struct{} {
	return r.started
}

// Start runs the start-up resolution once per resolver and returns the settled state.
// Later calls return the current state without doing any work.
func (r *SessionResolver) Start(ctx context.Context) domainsession.State {
	r.startOnce.Do(func() {
		defer close(r.started)
		r.resolveStartup(ctx)
	})
	return r.State()
}

func (r *SessionResolver) resolveStartup(ctx context.Context) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	sess, err := r.store.Load(ctx)
	switch {
	case err == nil:
		r.settle(ctx, domainsession.StateAuthenticated, &sess, triggerStoredSession)
		return
	case apperrors.IsNotFound(err):
	default:
		r.logger.ErrorContext(ctx, "read stored session failed", "error", err)
	}

	if r.consumeLaunchURL(ctx) {
		return
	}
	r.settle(ctx, domainsession.StateUnauthenticated, nil, triggerStartup)
}

// consumeLaunchURL reads the launch URL within the bounded wait and applies it.
func (r *SessionResolver) consumeLaunchURL(ctx context.Context) bool {
	lctx, cancel := context.WithTimeout(ctx, r.launchTimeout)
	defer cancel()

	rawURL, ok, err := r.launch.LaunchURL(lctx)
	if err != nil {
		r.logger.WarnContext(ctx, "launch url unavailable", "error", err)
		return false
	}
	if !ok {
		return false
	}

	return r.apply(ctx, domainsession.RedirectEvent{
		URL:        rawURL,
		Source:     domainsession.SourceLaunch,
		ReceivedAt: time.Now(),
	})
}

// HandleRedirect processes a deep link delivered while the app is running. It waits
// for the start-up resolution to finish first, so it must only be used on a resolver
// whose Start has been called. A session that is already stored is overwritten.
func (r *SessionResolver) HandleRedirect(ctx context.Context, ev domainsession.RedirectEvent) domainsession.State {
	select {
	case <-r.started:
	case <-ctx.Done():
		return r.State()
	}

	r.opMu.Lock()
	defer r.opMu.Unlock()

	r.apply(ctx, ev)
	return r.State()
}

// Logout clears the store, then moves to unauthenticated and shows the login screen.
// Like HandleRedirect it waits for start-up to finish, so a logout is never undone by
// a start-up that has not run yet. If ctx ends first the state is left unchanged and
// ctx's error returned. If the store cannot be cleared the state is left unchanged
// and the error returned.
func (r *SessionResolver) Logout(ctx context.Context) error {
	select {
	case <-r.started:
	case <-ctx.Done():
		return fmt.Errorf("wait for start-up: %w", ctx.Err())
	}

	r.opMu.Lock()
	defer r.opMu.Unlock()

	if err := r.store.Clear(ctx); err != nil {
		r.logger.ErrorContext(ctx, "clear stored session failed", "error", err)
		return fmt.Errorf("clear session: %w", err)
	}

	r.settle(ctx, domainsession.StateUnauthenticated, nil, triggerLogout)
	return nil
}

// Attach subscribes the resolver to live deep links from src and then resolves the
// start-up state, so no redirect published after Attach returns is missed. The
// returned func releases the subscription; it is also released when ctx is done.
func (r *SessionResolver) Attach(ctx context.Context, src ports.RedirectSource) (release func()) {
	release = src.Listen(ctx, func(hctx context.Context, ev domainsession.RedirectEvent) {
		r.HandleRedirect(hctx, ev)
	})
	r.Start(ctx)
	return release
}

// Run is the resolver's screen lifetime: it attaches to src and serves redirects
// until ctx is done. The subscription is released on return.
func (r *SessionResolver) Run(ctx context.Context, src ports.RedirectSource) error {
	release := r.Attach(ctx, src)
	defer release()

	<-ctx.Done()
	return nil
}

// apply decodes ev and, on success, persists the session before switching state.
// Every failure is logged and swallowed. Callers hold opMu.
func (r *SessionResolver) apply(ctx context.Context, ev domainsession.RedirectEvent) bool {
	res := r.decoder.Decode(ev.URL)
	metrics.EmitRedirect(r.metrics, ev.Source, res)

	switch result := res.(type) {
	case domainsession.Invalid:
		r.logInvalid(ctx, ev, result)
		return false

	case domainsession.Valid:
		if err := r.store.Save(ctx, result.Session); err != nil {
			r.logger.ErrorContext(ctx, "persist session failed",
				"event_id", ev.ID.String(),
				"source", string(ev.Source),
				"error", err)
			return false
		}

		trigger := triggerLiveRedirect
		if ev.Source == domainsession.SourceLaunch {
			trigger = triggerLaunchURL
		}
		sess := result.Session
		r.settle(ctx, domainsession.StateAuthenticated, &sess, trigger)
		return true

	default:
		r.logger.ErrorContext(ctx, "unexpected decode result", "type", fmt.Sprintf("%T", res))
		return false
	}
}

func (r *SessionResolver) logInvalid(ctx context.Context, ev domainsession.RedirectEvent, inv domainsession.Invalid) {
	attrs := []any{
		"event_id", ev.ID.String(),
		"source", string(ev.Source),
		"reason", string(inv.Reason),
	}
	if inv.Benign() {
		r.logger.DebugContext(ctx, "deep link ignored", attrs...)
		return
	}
	r.logger.WarnContext(ctx, "deep link payload rejected", append(attrs, "error", inv.Err)...)
}

// settle records the new state and navigates when the state actually changed.
func (r *SessionResolver) settle(
	ctx context.Context,
	to domainsession.State,
	sess *domainsession.Session,
	trigger string,
) {
	r.stateMu.Lock()
	from := r.state
	r.state = to
	r.current = sess
	r.stateMu.Unlock()

	if from == to {
		r.logger.DebugContext(ctx, "session refreshed", "state", string(to), "trigger", trigger)
		return
	}

	r.logger.InfoContext(ctx, "session state changed",
		"from", string(from),
		"to", string(to),
		"trigger", trigger)
	metrics.EmitTransition(r.metrics, from, to, trigger)
	r.nav.Navigate(ctx, domainsession.RouteFor(to))
}
