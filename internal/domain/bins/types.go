package bins

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bin is a waste bin as served by the backend registry.
type Bin struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Latitude  Degree `json:"latitude"`
	Longitude Degree `json:"longitude"`
}

// Position returns the bin's coordinates.
func (b Bin) Position() Coordinates {
	return Coordinates{Latitude: float64(b.Latitude), Longitude: float64(b.Longitude)}
}

// Degree is a coordinate component. The backend sends it either as a JSON number
// or as a numeric string, so both are accepted.
type Degree float64

// UnmarshalJSON implements json.Unmarshaler.
func (d *Degree) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("parse coordinate %q: %w", s, err)
		}
		*d = Degree(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parse coordinate: %w", err)
	}
	*d = Degree(v)
	return nil
}

// Severity is the status a user reports for a bin.
type Severity string

const (
	SeverityMedium  Severity = "medium"
	SeverityFull    Severity = "full"
	SeverityDamaged Severity = "damaged"
)

// Severities returns every accepted severity in display order.
func Severities() []Severity {
	return []Severity{SeverityMedium, SeverityFull, SeverityDamaged}
}

// ParseSeverity normalizes and validates a severity name.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	switch sev {
	case SeverityMedium, SeverityFull, SeverityDamaged:
		return sev, nil
	default:
		return "", fmt.Errorf("invalid severity: %q (valid options: medium, full, damaged)", s)
	}
}

// Report is a bin status report submitted to the backend.
type Report struct {
	BinID    int64    `json:"bin_id"`
	Severity Severity `json:"severity"`
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// DefaultCoordinates is used when the device position is unavailable.
var DefaultCoordinates = Coordinates{Latitude: -21.4333, Longitude: 47.0833}

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two positions.
func DistanceMeters(a, b Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
