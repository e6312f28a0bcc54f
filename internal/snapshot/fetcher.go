package snapshot

import (
	"context"
	"errors"
	"eventsnap/internal/components/chrono"
	"eventsnap/internal/components/telemetry"
	"eventsnap/internal/history"
	"eventsnap/internal/ticketmaster"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_fetcher_window = "fetcher.window"
	report_fetcher_rows   = "fetcher.rows"
)

var tracer = otel.Tracer("eventsnap/snapshot")
var meter = otel.Meter("eventsnap/snapshot")
var pagesFetched, _ = meter.Int64Counter("pages_fetched")
var pageFailures, _ = meter.Int64Counter("page_failures")

// DefaultHorizon is how far ahead of today events are requested.
const DefaultHorizon = 90 * 24 * time.Hour

// PageFetcher is the part of the ticketing client the fetcher depends on.
type PageFetcher interface {
	FetchPage(ctx context.Context, q ticketmaster.PageQuery) (ticketmaster.EventsPage, error)
}

type Options struct {
	Classification string
	CountryCode    string
	PageSize       int
	Horizon        time.Duration
}

type Fetcher struct {
	client PageFetcher
	clock  chrono.API
	tel    telemetry.API
	opts   Options
}

func NewFetcher(client PageFetcher, clock chrono.API, tel telemetry.API, opts Options) Fetcher {
	if opts.PageSize <= 0 || opts.PageSize > ticketmaster.MaxPageSize {
		opts.PageSize = ticketmaster.MaxPageSize
	}
	if opts.Horizon <= 0 {
		opts.Horizon = DefaultHorizon
	}
	return Fetcher{
		client: client,
		clock:  clock,
		tel:    telemetry.NewScopedAPI("snapshot", tel),
		opts:   opts,
	}
}

func (f Fetcher) query(w Window, page int) ticketmaster.PageQuery {
	return ticketmaster.PageQuery{
		Classification: f.opts.Classification,
		CountryCode:    f.opts.CountryCode,
		Start:          w.Start,
		End:            w.End,
		Page:           page,
		Size:           f.opts.PageSize,
	}
}

func flattenPage(page ticketmaster.EventsPage, snapshotDate string) []history.Row {
	events := page.Events()
	rows := make([]history.Row, len(events))
	for i, e := range events {
		rows[i] = Flatten(e, snapshotDate)
	}
	return rows
}

// FetchWindow pulls every page of a window. A failed page ends the window,
// whatever was gathered before it is kept. Rows are unique by event id.
func (f Fetcher) FetchWindow(ctx context.Context, w Window, snapshotDate string) []history.Row {
	ctx, span := tracer.Start(ctx, "fetcher:FetchWindow", trace.WithAttributes(
		attribute.String("window.start", ticketmaster.FormatTimestamp(w.Start)),
		attribute.String("window.end", ticketmaster.FormatTimestamp(w.End)),
	))
	defer span.End()

	first, err := f.client.FetchPage(ctx, f.query(w, 0))
	if err != nil {
		pageFailures.Add(ctx, 1)
		f.tel.ReportBroken(report_fetcher_window, w.String(), 0, err)
		return nil
	}
	pagesFetched.Add(ctx, 1)
	if !first.HasEvents() {
		return nil
	}

	rows := flattenPage(first, snapshotDate)
	for pg := 1; pg < first.Page.TotalPages; pg++ {
		page, err := f.client.FetchPage(ctx, f.query(w, pg))
		if err != nil {
			pageFailures.Add(ctx, 1)
			f.tel.ReportBroken(report_fetcher_window, w.String(), pg, err)
			break
		}
		pagesFetched.Add(ctx, 1)
		rows = append(rows, flattenPage(page, snapshotDate)...)
	}

	span.SetAttributes(attribute.Int("rows", len(rows)))
	return history.UniqueBy(rows, history.ByID)
}

// FetchAcrossMonths fetches every calendar-month window between start and end
// in order, rows are unique by event id across all windows.
func (f Fetcher) FetchAcrossMonths(ctx context.Context, start, end time.Time, snapshotDate string) []history.Row {
	var rows []history.Row
	for _, w := range MonthWindows(start, end) {
		slog.InfoContext(ctx, "fetching window", "start", chrono.Date(w.Start), "end", chrono.Date(w.End))
		rows = append(rows, f.FetchWindow(ctx, w, snapshotDate)...)
	}
	return history.UniqueBy(rows, history.ByID)
}

type Result struct {
	SnapshotDate string
	// rows returned by the api in this run
	Fetched int
	// rows that were not already in the dataset
	Added int
	// rows in the dataset after the merge
	Total int
}

// Run fetches the horizon starting now and merges the result into the
// dataset at `historyPath`. If nothing was fetched the dataset is left as is.
func (f Fetcher) Run(ctx context.Context, historyPath string) (Result, error) {
	ctx, span := tracer.Start(ctx, "fetcher:Run")
	defer span.End()

	now := f.clock.Now()
	snapshotDate := chrono.Date(now)
	result := Result{SnapshotDate: snapshotDate}

	fresh := f.FetchAcrossMonths(ctx, now, now.Add(f.opts.Horizon), snapshotDate)
	result.Fetched = len(fresh)
	f.tel.ReportCount(report_fetcher_rows, int64(len(fresh)))
	if len(fresh) == 0 {
		slog.WarnContext(ctx, "no data fetched")
		return result, nil
	}

	old, err := history.Read(ctx, historyPath)
	if errors.Is(err, os.ErrNotExist) {
		old = nil
	} else if err != nil {
		return result, fmt.Errorf("read existing history: %w", err)
	}

	merged := history.Merge(old, fresh)
	err = history.Write(historyPath, merged)
	if err != nil {
		return result, fmt.Errorf("write history: %w", err)
	}

	result.Added = len(merged) - len(old)
	result.Total = len(merged)
	return result, nil
}
