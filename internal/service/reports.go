package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/binwatch/internal/domain/bins"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/ports"
	"golang.org/x/time/rate"
)

const (
	defaultReportsPerMinute = 6.0
	defaultReportBurst      = 3
)

// ReportServiceConfig throttles report submission.
type ReportServiceConfig struct {
	RatePerMinute float64 // default 6
	Burst         int     // default 3
}

// ReportServiceOptions groups dependencies for ReportService.
type ReportServiceOptions struct {
	API    ports.BinAPI // Required
	Config ReportServiceConfig
	Logger *slog.Logger
}

// ReportService validates and submits bin status reports.
type ReportService struct {
	api     ports.BinAPI
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewReportService constructs a new ReportService.
func NewReportService(opts ReportServiceOptions) *ReportService {
	if opts.API == nil {
		panic("BinAPI is required")
	}

	perMinute := opts.Config.RatePerMinute
	if perMinute <= 0 {
		perMinute = defaultReportsPerMinute
	}
	burst := opts.Config.Burst
	if burst <= 0 {
		burst = defaultReportBurst
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ReportService{
		api:     opts.API,
		limiter: rate.NewLimiter(rate.Limit(perMinute/60.0), burst),
		logger:  logger,
	}
}

// Submit reports the status of a bin. Invalid input is rejected before any request is
// made, and submissions above the configured rate are refused with a rate_limited error.
func (s *ReportService) Submit(ctx context.Context, binID int64, severity string) (bins.Report, error) {
	if binID <= 0 {
		return bins.Report{}, apperrors.ValidationField("bin_id", "bin id must be positive")
	}
	sev, err := bins.ParseSeverity(severity)
	if err != nil {
		return bins.Report{}, apperrors.ValidationField("severity", err.Error())
	}

	if !s.limiter.Allow() {
		s.logger.WarnContext(ctx, "report throttled", "bin_id", binID)
		return bins.Report{}, apperrors.New(apperrors.ErrCodeRateLimited, "too many reports, try again later")
	}

	report := bins.Report{BinID: binID, Severity: sev}
	if err := s.api.SubmitReport(ctx, report); err != nil {
		s.logger.ErrorContext(ctx, "submit report failed", "bin_id", binID, "severity", string(sev), "error", err)
		return bins.Report{}, fmt.Errorf("submit report: %w", err)
	}

	s.logger.InfoContext(ctx, "report submitted", "bin_id", binID, "severity", string(sev))
	return report, nil
}
