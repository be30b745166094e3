package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/target/binwatch/config"
	"github.com/target/binwatch/internal/adapters/backend"
	"github.com/target/binwatch/internal/adapters/location"
	"github.com/target/binwatch/internal/observability/statsd"
	"github.com/target/binwatch/internal/ports"
	"github.com/target/binwatch/internal/redirect"
	"github.com/target/binwatch/internal/service"
)

// AppDeps contains what the host provides to the application.
type AppDeps struct {
	Config    *config.AppConfig
	Navigator ports.Navigator
	// Out receives user-facing output such as login URLs.
	Out    io.Writer
	Logger *slog.Logger
}

// App is the wired client core.
type App struct {
	Hub      *redirect.Hub
	Store    ports.SessionStore
	Resolver *service.SessionResolver
	Auth     *service.AuthService
	Maps     *service.MapService
	Reports  *service.ReportService
	Metrics  *statsd.Client

	closers []func() error
}

// NewApp builds the services from configuration. Call Close when done.
func NewApp(ctx context.Context, deps AppDeps) (*App, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.Navigator == nil {
		return nil, errors.New("navigator is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{Hub: redirect.NewHub(logger)}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.WarnContext(ctx, "metrics disabled", "error", err)
		metrics, _ = statsd.NewClient(statsd.Config{Logger: logger})
	}
	app.Metrics = metrics
	app.closers = append(app.closers, metrics.Close)

	store, closeStore, err := BuildSessionStore(ctx, StoreOptions{
		Session: cfg.Session,
		Redis:   cfg.Redis,
		Logger:  logger,
	})
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	app.Store = store
	app.closers = append(app.closers, closeStore)

	app.Resolver = service.NewSessionResolver(service.SessionResolverOptions{
		Ports: service.SessionResolverPorts{
			Store:     store,
			Launch:    app.Hub,
			Navigator: deps.Navigator,
		},
		Config: service.SessionResolverConfig{
			Decoder: redirect.Decoder{
				TrustedPrefix:        cfg.DeepLink.Prefix,
				RequireTrustedPrefix: cfg.DeepLink.RequireTrusted,
			},
			LaunchURLTimeout: cfg.DeepLink.LaunchURLTimeout,
			Metrics:          metrics,
		},
		Logger: logger,
	})

	if err := app.buildAuth(cfg, deps.Out, logger); err != nil {
		return nil, errors.Join(err, app.Close())
	}
	if err := app.buildBins(cfg, metrics, logger); err != nil {
		return nil, errors.Join(err, app.Close())
	}

	return app, nil
}

func (a *App) buildAuth(cfg *config.AppConfig, out io.Writer, logger *slog.Logger) error {
	opener, err := BuildLoginOpener(LoginOptions{
		Auth:      cfg.Auth,
		Prefix:    cfg.DeepLink.Prefix,
		Publisher: a.Hub,
		Out:       out,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	a.Auth, err = service.NewAuthService(service.AuthServiceOptions{
		Ports: service.AuthServicePorts{Opener: opener, Sessions: a.Resolver},
		Config: service.AuthServiceConfig{
			LoginEndpoint:   cfg.Auth.LoginEndpoint,
			DisplayNamePath: cfg.Auth.DisplayNamePath,
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("build auth service: %w", err)
	}
	return nil
}

func (a *App) buildBins(cfg *config.AppConfig, metrics statsd.Sink, logger *slog.Logger) error {
	api, err := backend.NewClient(backend.ClientOptions{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    cfg.Backend.Timeout,
		RetryLimit: cfg.Backend.RetryLimit,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("build backend client: %w", err)
	}

	pos, err := cfg.Location.Coordinates()
	if err != nil {
		return fmt.Errorf("location config: %w", err)
	}
	loc := location.NewStatic(location.Config{
		Granted:  cfg.Location.Granted(),
		Position: pos,
		Delay:    cfg.Location.Delay,
	})

	a.Maps = service.NewMapService(service.MapServiceOptions{
		Ports: service.MapServicePorts{Bins: api, Location: loc},
		Config: service.MapServiceConfig{
			PositionTimeout: cfg.Location.Timeout,
			RadiusMeters:    cfg.Location.Radius,
		},
		Logger: logger,
	})
	a.Reports = service.NewReportService(service.ReportServiceOptions{
		API: api,
		Config: service.ReportServiceConfig{
			RatePerMinute: cfg.Report.RatePerMinute,
			Burst:         cfg.Report.Burst,
		},
		Logger: logger,
	})
	return nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
