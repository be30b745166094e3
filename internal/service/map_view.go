package service

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/target/binwatch/internal/domain/bins"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/ports"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPositionTimeout = 10 * time.Second
	defaultRadiusMeters    = 1000.0
)

// Notice is a user-facing condition shown on the map screen.
type Notice string

const (
	NoticePermissionDenied    Notice = "location_permission_denied"
	NoticePositionTimeout     Notice = "location_timeout"
	NoticePositionUnavailable Notice = "location_unavailable"
	NoticeBinsUnavailable     Notice = "bins_unavailable"
)

// NearbyBin is a bin annotated with its distance from the map center.
type NearbyBin struct {
	Bin            bins.Bin
	DistanceMeters float64
	WithinRadius   bool
}

// MapView is everything the map screen renders.
type MapView struct {
	Center bins.Coordinates
	// Located is false when Center fell back to the default coordinates.
	Located bool
	Bins    []NearbyBin
	Notices []Notice
}

// HasNotice reports whether n was raised.
func (v MapView) HasNotice(n Notice) bool {
	return slices.Contains(v.Notices, n)
}

// MapServicePorts groups the collaborators of MapService.
type MapServicePorts struct {
	Bins     ports.BinAPI          // Required
	Location ports.LocationService // Required
}

// MapServiceConfig tunes the map screen.
type MapServiceConfig struct {
	PositionTimeout time.Duration // default 10s
	RadiusMeters    float64       // default 1000
	Fallback        *bins.Coordinates
}

// MapServiceOptions groups dependencies for MapService.
type MapServiceOptions struct {
	Ports  MapServicePorts
	Config MapServiceConfig
	Logger *slog.Logger
}

// MapService builds the nearby-bins view.
type MapService struct {
	api             ports.BinAPI
	location        ports.LocationService
	positionTimeout time.Duration
	radius          float64
	fallback        bins.Coordinates
	logger          *slog.Logger
}

// NewMapService constructs a new MapService.
func NewMapService(opts MapServiceOptions) *MapService {
	if opts.Ports.Bins == nil {
		panic("BinAPI is required")
	}
	if opts.Ports.Location == nil {
		panic("LocationService is required")
	}

	svc := &MapService{
		api:             opts.Ports.Bins,
		location:        opts.Ports.Location,
		positionTimeout: opts.Config.PositionTimeout,
		radius:          opts.Config.RadiusMeters,
		fallback:        bins.DefaultCoordinates,
		logger:          opts.Logger,
	}
	if svc.positionTimeout <= 0 {
		svc.positionTimeout = defaultPositionTimeout
	}
	if svc.radius <= 0 {
		svc.radius = defaultRadiusMeters
	}
	if opts.Config.Fallback != nil {
		svc.fallback = *opts.Config.Fallback
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Load fetches the bins and the device position concurrently. Neither failure is fatal:
// each is reported as a notice and the view falls back to the default center or an
// empty list. Only cancellation of ctx is returned as an error.
func (s *MapService) Load(ctx context.Context) (*MapView, error) {
	var (
		list       []bins.Bin
		binsNotice Notice
		center     bins.Coordinates
		located    bool
		posNotice  Notice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.api.ListBins(gctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.logger.ErrorContext(ctx, "load bins failed", "error", err)
			list, binsNotice = nil, NoticeBinsUnavailable
		}
		return nil
	})
	g.Go(func() error {
		var err error
		center, located, posNotice, err = s.resolvePosition(gctx)
		if err != nil {
			return err
		}
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &MapView{
		Center:  center,
		Located: located,
		Bins:    s.rank(center, list),
	}
	for _, n := range []Notice{posNotice, binsNotice} {
		if n != "" {
			view.Notices = append(view.Notices, n)
		}
	}
	return view, nil
}

type positionResult struct {
	pos bins.Coordinates
	err error
}

// resolvePosition asks for permission, then waits a bounded time for a fix.
func (s *MapService) resolvePosition(ctx context.Context) (bins.Coordinates, bool, Notice, error) {
	granted, err := s.location.RequestPermission(ctx)
	switch {
	case ctx.Err() != nil:
		return bins.Coordinates{}, false, "", ctx.Err()
	case err != nil:
		s.logger.WarnContext(ctx, "location permission request failed", "error", err)
		return s.fallback, false, NoticePositionUnavailable, nil
	case !granted:
		s.logger.InfoContext(ctx, "location permission denied")
		return s.fallback, false, NoticePermissionDenied, nil
	}

	pctx, cancel := context.WithTimeout(ctx, s.positionTimeout)
	defer cancel()

	// The location service may not honor ctx, so the wait is enforced here.
	done := make(chan positionResult, 1)
	go func() {
		pos, err := s.location.CurrentPosition(pctx)
		done <- positionResult{pos: pos, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			return res.pos, true, "", nil
		}
		if ctx.Err() != nil {
			return bins.Coordinates{}, false, "", ctx.Err()
		}
		if apperrors.IsTimeout(res.err) || errors.Is(res.err, context.DeadlineExceeded) {
			s.logger.WarnContext(ctx, "location timed out", "timeout", s.positionTimeout.String())
			return s.fallback, false, NoticePositionTimeout, nil
		}
		s.logger.WarnContext(ctx, "location unavailable", "error", res.err)
		return s.fallback, false, NoticePositionUnavailable, nil
	case <-pctx.Done():
		if ctx.Err() != nil {
			return bins.Coordinates{}, false, "", ctx.Err()
		}
		s.logger.WarnContext(ctx, "location timed out", "timeout", s.positionTimeout.String())
		return s.fallback, false, NoticePositionTimeout, nil
	}
}

// rank sorts bins by distance from center, nearest first.
func (s *MapService) rank(center bins.Coordinates, list []bins.Bin) []NearbyBin {
	out := make([]NearbyBin, 0, len(list))
	for _, b := range list {
		d := bins.DistanceMeters(center, b.Position())
		out = append(out, NearbyBin{Bin: b, DistanceMeters: d, WithinRadius: d <= s.radius})
	}
	slices.SortStableFunc(out, func(a, b NearbyBin) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})
	return out
}
