package ports

import (
	"context"

	"github.com/target/binwatch/internal/domain/bins"
)

// BinAPI is the backend data API consumed by the map screen.
type BinAPI interface {
	ListBins(ctx context.Context) ([]bins.Bin, error)
	SubmitReport(ctx context.Context, report bins.Report) error
}

// LocationService is the device location service.
type LocationService interface {
	// RequestPermission reports whether the user granted foreground location access.
	RequestPermission(ctx context.Context) (bool, error)
	// CurrentPosition returns the device position.
	CurrentPosition(ctx context.Context) (bins.Coordinates, error)
}
