// Package location provides a config-driven stand-in for the device location service.
package location

import (
	"context"
	"time"

	"github.com/target/binwatch/internal/domain/bins"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/ports"
)

var _ ports.LocationService = (*Static)(nil)

// Config describes what the static service reports.
type Config struct {
	Granted bool
	// Position is nil when no fix is available.
	Position *bins.Coordinates
	// Delay is waited before answering CurrentPosition.
	Delay time.Duration
}

// Static answers location requests from configuration.
type Static struct {
	cfg Config
}

// NewStatic builds a Static location service.
func NewStatic(cfg Config) *Static {
	return &Static{cfg: cfg}
}

// RequestPermission reports the configured permission.
func (s *Static) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.cfg.Granted, nil
}

// CurrentPosition waits the configured delay and returns the configured position.
func (s *Static) CurrentPosition(ctx context.Context) (bins.Coordinates, error) {
	if !s.cfg.Granted {
		return bins.Coordinates{}, apperrors.New(apperrors.ErrCodePermissionDenied, "location permission not granted")
	}
	if s.cfg.Delay > 0 {
		timer := time.NewTimer(s.cfg.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return bins.Coordinates{}, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeTimeout, "waiting for position")
		case <-timer.C:
		}
	}
	if s.cfg.Position == nil {
		return bins.Coordinates{}, apperrors.New(apperrors.ErrCodeInternal, "no position fix available")
	}
	return *s.cfg.Position, nil
}
