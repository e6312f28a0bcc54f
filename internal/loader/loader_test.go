package loader

import (
	"context"
	"database/sql"
	"eventsnap/internal/normalize"
	"eventsnap/lib/testutil"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func str(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func dump(t testing.TB, database *sql.DB, table string) [][]string {
	rows, err := database.Query(fmt.Sprintf(`select * from "%s" order by 1, 2`, table))
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)

	var out [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		require.NoError(t, rows.Scan(ptrs...))

		row := make([]string, len(cols))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "<null>"
			}
		}
		out = append(out, row)
	}
	require.NoError(t, rows.Err())
	return out
}

func dumpAll(t testing.TB, database *sql.DB) map[string][][]string {
	out := map[string][][]string{}
	for _, table := range []string{"venues", "artists", "events", "event_price_history"} {
		out[table] = dump(t, database, table)
	}
	return out
}

func sampleTables() normalize.Tables {
	return normalize.Tables{
		Venues: []normalize.Venue{
			{VenueID: "v1", VenueName: str("Hall"), Lat: sql.NullFloat64{Float64: 30.5, Valid: true}},
		},
		Artists: []normalize.Artist{
			{ArtistID: "a1", ArtistName: str("Band")},
		},
		Events: []normalize.Event{
			{
				EventID:  "e1",
				Name:     str("Show"),
				Datetime: sql.NullTime{Time: time.Date(2024, time.May, 1, 19, 30, 0, 0, time.UTC), Valid: true},
				Family:   sql.NullInt64{Int64: 1, Valid: true},
				ArtistID: str("a1"),
				VenueID:  str("v1"),
			},
		},
		PriceHistory: []normalize.PriceSnapshot{
			{EventID: "e1", SnapshotDate: time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC), MinPrice: sql.NullFloat64{Float64: 10, Valid: true}, Currency: str("USD")},
			{EventID: "e1", SnapshotDate: time.Date(2024, time.April, 21, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database := testutil.OpenDB(t, "")

	counts, err := Load(ctx, database, sampleTables())
	require.NoError(t, err)
	require.Equal(t, Counts{Venues: 1, Artists: 1, Events: 1, PriceHistory: 2}, counts)
	first := dumpAll(t, database)

	_, err = Load(ctx, database, sampleTables())
	require.NoError(t, err)
	second := dumpAll(t, database)

	require.Empty(t, cmp.Diff(first, second))
	require.Len(t, second["event_price_history"], 2)
	require.Equal(t, []string{"e1", "2024-04-20 00:00:00", "10", "<null>", "USD"}, second["event_price_history"][0])
	require.Equal(t, "2024-05-01 19:30:00", second["events"][0][5])
}

func TestLoadOverwritesOnConflict(t *testing.T) {
	ctx := context.Background()
	database := testutil.OpenDB(t, "")

	_, err := Load(ctx, database, sampleTables())
	require.NoError(t, err)

	update := normalize.Tables{
		Venues:  []normalize.Venue{{VenueID: "v1", VenueName: str("Hall Renamed")}},
		Artists: []normalize.Artist{{ArtistID: "a2", ArtistName: str("Other")}},
	}
	_, err = Load(ctx, database, update)
	require.NoError(t, err)

	venues := dump(t, database, "venues")
	require.Len(t, venues, 1)
	require.Equal(t, "Hall Renamed", venues[0][1])
	require.Equal(t, "<null>", venues[0][5], "every non-key column is overwritten")
	require.Len(t, dump(t, database, "artists"), 2)
}

func TestLoadRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	database := testutil.OpenDB(t, "")

	_, err := Load(ctx, database, normalize.Tables{})
	require.NoError(t, err)
	_, err = database.Exec(`
		create trigger reject_prices before insert on event_price_history
		begin
			select raise(abort, 'rejected');
		end;
	`)
	require.NoError(t, err)

	_, err = Load(ctx, database, sampleTables())
	require.ErrorContains(t, err, "event_price_history")

	for table, rows := range dumpAll(t, database) {
		require.Empty(t, rows, table)
	}
}

var installReader = sync.OnceValue(func() *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	return reader
})

func upserted(t testing.TB, reader *sdkmetric.ManualReader, table string) int64 {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "rows_upserted" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, ok := dp.Attributes.Value(attribute.Key("table"))
				if ok && v.AsString() == table {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestLoadCountsOnlyCommittedRows(t *testing.T) {
	reader := installReader()
	ctx := context.Background()
	database := testutil.OpenDB(t, "")

	_, err := Load(ctx, database, normalize.Tables{})
	require.NoError(t, err)
	_, err = database.Exec(`
		create trigger reject_prices before insert on event_price_history
		begin
			select raise(abort, 'rejected');
		end;
	`)
	require.NoError(t, err)

	venues := upserted(t, reader, "venues")
	prices := upserted(t, reader, "event_price_history")
	_, err = Load(ctx, database, sampleTables())
	require.Error(t, err)
	require.Equal(t, venues, upserted(t, reader, "venues"))
	require.Equal(t, prices, upserted(t, reader, "event_price_history"))

	_, err = database.Exec(`drop trigger reject_prices`)
	require.NoError(t, err)
	_, err = Load(ctx, database, sampleTables())
	require.NoError(t, err)
	require.Equal(t, venues+1, upserted(t, reader, "venues"))
	require.Equal(t, prices+2, upserted(t, reader, "event_price_history"))
}
