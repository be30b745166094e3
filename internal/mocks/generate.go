// Package mocks provides mock implementations of the binwatch ports for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the backend and
// device interfaces. Hand-written doubles for the session ports live in internal/mocks/auth.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockBinAPI(ctrl)
//	api.EXPECT().ListBins(gomock.Any()).Return(list, nil)
package mocks

// Generate mock for BinAPI interface from internal/ports package.
// This creates MockBinAPI with methods for all BinAPI interface methods:
// ListBins, SubmitReport
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=bin_api_mock.go github.com/target/binwatch/internal/ports BinAPI

// Generate mock for LocationService interface from internal/ports package.
// This creates MockLocationService with methods for all LocationService interface methods:
// RequestPermission, CurrentPosition
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=location_service_mock.go github.com/target/binwatch/internal/ports LocationService
