package loader

import (
	"context"
	"database/sql"
	"eventsnap/internal/db"
	"eventsnap/internal/normalize"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("eventsnap/loader")
var meter = otel.Meter("eventsnap/loader")
var rowsUpserted, _ = meter.Int64Counter("rows_upserted")

// Counts is the number of rows upserted into each table.
type Counts struct {
	Venues       int
	Artists      int
	Events       int
	PriceHistory int
}

func nullTimestamp(t sql.NullTime) sql.NullString {
	if !t.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: normalize.FormatTimestamp(t), Valid: true}
}

func upsertAll[T any](ctx context.Context, table string, rows []T, upsert func(context.Context, T) error) error {
	for i, row := range rows {
		err := upsert(ctx, row)
		if err != nil {
			return fmt.Errorf("upsert %s row %d: %w", table, i, err)
		}
	}
	return nil
}

func recordUpserted(ctx context.Context, c Counts) {
	for table, n := range map[string]int{
		"venues":              c.Venues,
		"artists":             c.Artists,
		"events":              c.Events,
		"event_price_history": c.PriceHistory,
	} {
		rowsUpserted.Add(ctx, int64(n), metric.WithAttributes(attribute.String("table", table)))
	}
}

// Load applies the schema and upserts every table in a single transaction,
// venues and artists before the events that reference them. Each upsert is
// prepared once per load. Existing rows
// have all non-key columns overwritten. Any failure rolls back the whole load.
func Load(ctx context.Context, database *sql.DB, t normalize.Tables) (Counts, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	counts, err := load(ctx, database, t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Counts{}, err
	}
	slog.InfoContext(ctx, "loaded tables",
		"venues", counts.Venues,
		"artists", counts.Artists,
		"events", counts.Events,
		"event_price_history", counts.PriceHistory,
	)
	return counts, nil
}

func load(ctx context.Context, database *sql.DB, t normalize.Tables) (Counts, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return Counts{}, fmt.Errorf("apply schema: %w", err)
	}

	txqry, discard, commit, err := db.NewMakeTx(database)(ctx)
	if err != nil {
		return Counts{}, err
	}
	defer discard()

	err = upsertAll(ctx, "venues", t.Venues, func(ctx context.Context, v normalize.Venue) error {
		return txqry.UpsertVenue(ctx, db.UpsertVenueParams{
			VenueID:   v.VenueID,
			VenueName: v.VenueName,
			City:      v.City,
			State:     v.State,
			Country:   v.Country,
			Lat:       v.Lat,
			Lon:       v.Lon,
		})
	})
	if err != nil {
		return Counts{}, err
	}

	err = upsertAll(ctx, "artists", t.Artists, func(ctx context.Context, a normalize.Artist) error {
		return txqry.UpsertArtist(ctx, db.UpsertArtistParams{
			ArtistID:   a.ArtistID,
			ArtistName: a.ArtistName,
		})
	})
	if err != nil {
		return Counts{}, err
	}

	err = upsertAll(ctx, "events", t.Events, func(ctx context.Context, e normalize.Event) error {
		return txqry.UpsertEvent(ctx, db.UpsertEventParams{
			EventID:     e.EventID,
			Name:        e.Name,
			Url:         e.Url,
			Type:        e.Type,
			Locale:      e.Locale,
			Datetime:    nullTimestamp(e.Datetime),
			Status:      e.Status,
			OnsaleDate:  nullTimestamp(e.OnsaleDate),
			OffsaleDate: nullTimestamp(e.OffsaleDate),
			Segment:     e.Segment,
			Genre:       e.Genre,
			Subgenre:    e.Subgenre,
			Family:      e.Family,
			ArtistID:    e.ArtistID,
			VenueID:     e.VenueID,
		})
	})
	if err != nil {
		return Counts{}, err
	}

	err = upsertAll(ctx, "event_price_history", t.PriceHistory, func(ctx context.Context, p normalize.PriceSnapshot) error {
		return txqry.UpsertPriceSnapshot(ctx, db.UpsertPriceSnapshotParams{
			EventID:      p.EventID,
			SnapshotDate: p.SnapshotDate.Format(normalize.TimestampLayout),
			MinPrice:     p.MinPrice,
			MaxPrice:     p.MaxPrice,
			Currency:     p.Currency,
		})
	})
	if err != nil {
		return Counts{}, err
	}

	err = commit()
	if err != nil {
		return Counts{}, fmt.Errorf("commit: %w", err)
	}
	counts := Counts{
		Venues:       len(t.Venues),
		Artists:      len(t.Artists),
		Events:       len(t.Events),
		PriceHistory: len(t.PriceHistory),
	}
	recordUpserted(ctx, counts)
	return counts, nil
}
