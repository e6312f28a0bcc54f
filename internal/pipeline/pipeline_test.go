package pipeline

import (
	"context"
	"database/sql"
	"eventsnap/internal/history"
	"eventsnap/internal/loader"
	"eventsnap/internal/tables"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func str(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func writeDataset(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "events_history.parquet")
	require.NoError(t, history.Write(path, []history.Row{
		{
			ID: str("e1"), Name: str("Show"), Date: str("2024-05-01"), Time: str("19:30:00"),
			VenueID: str("v1"), Venue: str("Hall"), ArtistID: str("a1"), Artist: str("Band"),
			Family: str("FALSE"), MinPrice: str("45.5"), Currency: str("USD"),
			SnapshotDate: str("2024-04-20"),
		},
		{
			ID: str("e1"), Name: str("Show"), Date: str("2024-05-01"), Time: str("19:30:00"),
			VenueID: str("v1"), ArtistID: str("a1"),
			MinPrice: str("not_a_number"), SnapshotDate: str("2024-04-21"),
		},
	}))
	return path
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	opts := Options{
		DataPath: writeDataset(t),
		DBPath:   filepath.Join(dir, "events.db"),
		OutDir:   filepath.Join(dir, "transformed"),
		Clean:    true,
	}

	counts, err := Run(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, loader.Counts{Venues: 1, Artists: 1, Events: 1, PriceHistory: 2}, counts)
	require.NoDirExists(t, opts.OutDir)

	database, err := sql.Open("sqlite", opts.DBPath)
	require.NoError(t, err)
	defer database.Close()

	var datetime string
	var family int64
	require.NoError(t, database.QueryRow(`select datetime, family from events where event_id = 'e1'`).Scan(&datetime, &family))
	require.Equal(t, "2024-05-01 19:30:00", datetime)
	require.Zero(t, family)

	var minPrice sql.NullFloat64
	require.NoError(t, database.QueryRow(
		`select min_price from event_price_history where event_id = 'e1' and snapshot_date = '2024-04-21 00:00:00'`,
	).Scan(&minPrice))
	require.False(t, minPrice.Valid)
}

func TestRunKeepsTablesWithoutClean(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		DataPath: writeDataset(t),
		DBPath:   filepath.Join(dir, "events.db"),
		OutDir:   filepath.Join(dir, "transformed"),
	}
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, tables.CheckExist(opts.OutDir))
}

func TestLoadMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := Transform(context.Background(), writeDataset(t), dir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(tables.Path(dir, "events")))

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "events.db"), dir)
	var missing tables.MissingFileError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, tables.Path(dir, "events"), missing.Path)
}

func TestTransformMissingDataset(t *testing.T) {
	_, err := Transform(context.Background(), filepath.Join(t.TempDir(), "absent.parquet"), t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunWithEmptyVenueId(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "events_history.parquet")
	require.NoError(t, history.Write(dataPath, []history.Row{
		{ID: str("e1"), VenueID: str(""), ArtistID: str("a1"), SnapshotDate: str("2024-04-20")},
	}))

	opts := Options{
		DataPath: dataPath,
		DBPath:   filepath.Join(dir, "events.db"),
		OutDir:   filepath.Join(dir, "transformed"),
	}
	counts, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, loader.Counts{Venues: 0, Artists: 1, Events: 1, PriceHistory: 1}, counts)

	database, err := sql.Open("sqlite", opts.DBPath)
	require.NoError(t, err)
	defer database.Close()

	var venueID sql.NullString
	require.NoError(t, database.QueryRow(`select venue_id from events where event_id = 'e1'`).Scan(&venueID))
	require.False(t, venueID.Valid)
}
