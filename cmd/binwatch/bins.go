package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/target/binwatch/internal/service"
)

func runBins(cc *commandContext, _ []string) error {
	app, err := newApp(cc, io.Discard)
	if err != nil {
		return err
	}
	defer closeApp(cc, app)

	view, err := app.Maps.Load(cc.Ctx)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return renderMapView(cc.Stdout, view)
}

func renderMapView(w io.Writer, view *service.MapView) error {
	source := "current position"
	if !view.Located {
		source = "default location"
	}
	if err := writef(w, "Center: %.5f, %.5f (%s)\n",
		view.Center.Latitude, view.Center.Longitude, source); err != nil {
		return err
	}
	for _, n := range view.Notices {
		if err := writef(w, "Notice: %s\n", noticeText(n)); err != nil {
			return err
		}
	}
	if len(view.Bins) == 0 {
		return writeln(w, "No bins to show.")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "ID\tNAME\tDISTANCE\tNEARBY"); err != nil {
		return fmt.Errorf("write bins header row: %w", err)
	}
	for _, nb := range view.Bins {
		nearby := ""
		if nb.WithinRadius {
			nearby = "yes"
		}
		if err := writef(tw, "%d\t%s\t%s\t%s\n",
			nb.Bin.ID, nb.Bin.Name, formatDistance(nb.DistanceMeters), nearby); err != nil {
			return fmt.Errorf("write bins row: %w", err)
		}
	}
	return tw.Flush()
}

func noticeText(n service.Notice) string {
	switch n {
	case service.NoticePermissionDenied:
		return "location permission denied; showing the default location"
	case service.NoticePositionTimeout:
		return "location timed out; showing the default location"
	case service.NoticePositionUnavailable:
		return "location unavailable; showing the default location"
	case service.NoticeBinsUnavailable:
		return "bins could not be loaded"
	default:
		return string(n)
	}
}

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

type reportOptions struct {
	BinID    int64
	Severity string
}

func parseReportFlags(args []string) (reportOptions, error) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts reportOptions
	fs.Int64Var(&opts.BinID, "bin", 0, "Bin ID to report (required)")
	fs.StringVar(&opts.Severity, "severity", "", "One of medium, full, damaged (required)")
	if err := fs.Parse(args); err != nil {
		return reportOptions{}, err
	}
	if opts.BinID <= 0 {
		return reportOptions{}, errors.New("--bin is required")
	}
	return opts, nil
}

func runReport(cc *commandContext, args []string) error {
	opts, err := parseReportFlags(args)
	if err != nil {
		return err
	}

	app, err := newApp(cc, io.Discard)
	if err != nil {
		return err
	}
	defer closeApp(cc, app)

	report, err := app.Reports.Submit(cc.Ctx, opts.BinID, opts.Severity)
	if err != nil {
		return err
	}
	return writef(cc.Stdout, "reported bin %d as %s\n", report.BinID, report.Severity)
}
