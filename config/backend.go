package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/target/binwatch/internal/domain/bins"
)

const (
	defaultBackendTimeout   = 10 * time.Second
	defaultPositionTimeout  = 10 * time.Second
	defaultRadiusMeters     = 1000
	defaultReportsPerMinute = 6
	defaultReportBurst      = 3
)

// BackendConfig contains the data API configuration.
type BackendConfig struct {
	BaseURL    string        `env:"BACKEND_BASE_URL"    envDefault:"http://localhost:3000"`
	Timeout    time.Duration `env:"BACKEND_TIMEOUT"     envDefault:"10s"`
	RetryLimit int           `env:"BACKEND_RETRY_LIMIT" envDefault:"2"`
}

// Sanitize applies guardrails to backend values.
func (c *BackendConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultBackendTimeout
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}
}

// ReportConfig throttles bin report submission.
type ReportConfig struct {
	RatePerMinute float64 `env:"REPORT_RATE_PER_MINUTE" envDefault:"6"`
	Burst         int     `env:"REPORT_BURST"           envDefault:"3"`
}

// Sanitize enforces a positive rate and burst.
func (c *ReportConfig) Sanitize() {
	if c.RatePerMinute <= 0 {
		c.RatePerMinute = defaultReportsPerMinute
	}
	if c.Burst <= 0 {
		c.Burst = defaultReportBurst
	}
}

// LocationConfig drives the static location service and the map screen.
type LocationConfig struct {
	// Permission is granted or denied.
	Permission string `env:"LOCATION_PERMISSION" envDefault:"granted"`
	// Position is "lat,lng"; empty means no fix is available.
	Position string        `env:"LOCATION_POSITION"`
	Delay    time.Duration `env:"LOCATION_DELAY"         envDefault:"0s"`
	Timeout  time.Duration `env:"LOCATION_TIMEOUT"       envDefault:"10s"`
	Radius   float64       `env:"LOCATION_RADIUS_METERS" envDefault:"1000"`
}

// Sanitize normalises the permission and enforces positive timings.
func (c *LocationConfig) Sanitize() {
	c.Permission = strings.ToLower(strings.TrimSpace(c.Permission))
	if c.Permission != "denied" {
		c.Permission = "granted"
	}
	c.Position = strings.TrimSpace(c.Position)
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultPositionTimeout
	}
	if c.Radius <= 0 {
		c.Radius = defaultRadiusMeters
	}
}

// Granted reports whether location permission is granted.
func (c *LocationConfig) Granted() bool {
	return c.Permission == "granted"
}

// Coordinates parses Position. It returns nil when no position is configured.
func (c *LocationConfig) Coordinates() (*bins.Coordinates, error) {
	if c.Position == "" {
		return nil, nil
	}
	latStr, lngStr, ok := strings.Cut(c.Position, ",")
	if !ok {
		return nil, fmt.Errorf("invalid LOCATION_POSITION %q: want \"lat,lng\"", c.Position)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid latitude in LOCATION_POSITION %q", c.Position)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("invalid longitude in LOCATION_POSITION %q", c.Position)
	}
	return &bins.Coordinates{Latitude: lat, Longitude: lng}, nil
}
