package validate

import (
	"bytes"
	"context"
	"database/sql"
	"eventsnap/internal/db"
	"eventsnap/internal/loader"
	"eventsnap/internal/normalize"
	"eventsnap/lib/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func str(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func price(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: true}
}

func openTestDB(t testing.TB, tables normalize.Tables) *sql.DB {
	database := testutil.OpenDB(t, db.Schema)
	_, err := loader.Load(context.Background(), database, tables)
	require.NoError(t, err)
	return database
}

func orphans(r Report, fk string) sql.NullFloat64 {
	for _, o := range r.Orphans {
		if o.FK == fk {
			return o.POrphans
		}
	}
	return sql.NullFloat64{}
}

func TestOrphansWhenEveryArtistExists(t *testing.T) {
	database := openTestDB(t, normalize.Tables{
		Venues:  []normalize.Venue{{VenueID: "v1"}},
		Artists: []normalize.Artist{{ArtistID: "a1"}, {ArtistID: "a2"}},
		Events: []normalize.Event{
			{EventID: "e1", ArtistID: str("a1"), VenueID: str("v1")},
			{EventID: "e2", ArtistID: str("a2"), VenueID: str("v-missing")},
			{EventID: "e3", ArtistID: str("a1")},
			{EventID: "e4", ArtistID: str("a2"), VenueID: str("v1")},
		},
	})

	report, err := Run(context.Background(), database)
	require.NoError(t, err)

	require.Equal(t, price(0.0), orphans(report, "events.artist_id -> artists"))
	require.Equal(t, price(0.5), orphans(report, "events.venue_id -> venues"), "null references are orphans")
}

func TestReport(t *testing.T) {
	snapshot := time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC)
	database := openTestDB(t, normalize.Tables{
		Venues:  []normalize.Venue{{VenueID: "v1"}},
		Artists: []normalize.Artist{{ArtistID: "a1"}},
		Events: []normalize.Event{
			{EventID: "e1", Datetime: sql.NullTime{Time: snapshot, Valid: true}},
			{EventID: "e2"},
		},
		PriceHistory: []normalize.PriceSnapshot{
			{EventID: "e1", SnapshotDate: snapshot, MinPrice: price(10), Currency: str("USD")},
			{EventID: "e2", SnapshotDate: snapshot, MinPrice: price(0), Currency: str("USD")},
			{EventID: "e1", SnapshotDate: snapshot.AddDate(0, 0, 1), Currency: str("USD")},
			{EventID: "e2", SnapshotDate: snapshot.AddDate(0, 0, 1), MinPrice: price(-1)},
		},
	})

	report, err := Run(context.Background(), database)
	require.NoError(t, err)

	require.Equal(t, []TableCount{
		{Name: "artists", Rows: 1},
		{Name: "event_price_history", Rows: 4},
		{Name: "events", Rows: 2},
		{Name: "venues", Rows: 1},
	}, report.RowCounts)

	require.Len(t, report.NullRates, 4)
	require.Equal(t, "events", report.NullRates[0].Table)
	require.Equal(t, price(0), report.NullRates[0].PNullID)
	require.Equal(t, price(0.5), report.NullRates[0].PNullSecondary)

	for _, u := range report.Uniqueness {
		require.Zero(t, u.DuplicateKeys, u.Table)
	}

	require.Len(t, report.Currencies, 2)
	usd := report.Currencies[0]
	require.Equal(t, "USD", usd.Currency)
	require.Equal(t, int64(3), usd.TotalRows)
	require.InDelta(t, 1.0/3, usd.NullRate.Float64, 1e-9)
	require.InDelta(t, 1.0/3, usd.ZeroRate.Float64, 1e-9)
	require.Equal(t, price(0), usd.NegativeRate)
	require.Equal(t, "(NULL)", report.Currencies[1].Currency)
	require.Equal(t, price(1), report.Currencies[1].NegativeRate)

	var out bytes.Buffer
	Render(&out, report)
	require.Contains(t, out.String(), "Foreign-key coverage (orphans)")
	require.Contains(t, out.String(), "event_price_history")
	require.Contains(t, out.String(), "Validation complete.\n")
}

func TestEmptyStore(t *testing.T) {
	database := openTestDB(t, normalize.Tables{})
	report, err := Run(context.Background(), database)
	require.NoError(t, err)
	require.Len(t, report.RowCounts, 4)
	require.False(t, orphans(report, "events.artist_id -> artists").Valid)
	require.Empty(t, report.Currencies)
}
