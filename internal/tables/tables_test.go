package tables

import (
	"database/sql"
	"eventsnap/internal/normalize"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func str(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func sampleTables() normalize.Tables {
	at := time.Date(2024, time.May, 1, 19, 30, 0, 0, time.UTC)
	return normalize.Tables{
		Venues: []normalize.Venue{
			{VenueID: "v1", VenueName: str("Hall, Main"), City: str("Austin"), Lat: sql.NullFloat64{Float64: 30.26, Valid: true}},
			{VenueID: "v2"},
		},
		Artists: []normalize.Artist{
			{ArtistID: "a1", ArtistName: str(`The "Band"`)},
		},
		Events: []normalize.Event{
			{
				EventID:  "e1",
				Name:     str("Show"),
				Datetime: sql.NullTime{Time: at, Valid: true},
				Family:   sql.NullInt64{Int64: 0, Valid: true},
				ArtistID: str("a1"),
				VenueID:  str("v1"),
			},
			{EventID: "e2"},
		},
		PriceHistory: []normalize.PriceSnapshot{
			{
				EventID:      "e1",
				SnapshotDate: time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC),
				MinPrice:     sql.NullFloat64{Float64: 45.5, Valid: true},
				Currency:     str("USD"),
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transformed")
	expect := sampleTables()

	require.NoError(t, WriteAll(dir, expect))
	require.NoError(t, CheckExist(dir))

	got, err := ReadAll(dir)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(expect, got))
}

func TestWrittenFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAll(dir, sampleTables()))

	content, err := os.ReadFile(Path(dir, "event_price_history"))
	require.NoError(t, err)
	require.Equal(t, "event_id,snapshot_date,min_price,max_price,currency\ne1,2024-04-20 00:00:00,45.5,,USD\n", string(content))

	content, err = os.ReadFile(Path(dir, "events"))
	require.NoError(t, err)
	require.Contains(t, string(content), "e1,Show,,,,2024-05-01 19:30:00,,,,,,,0,a1,v1\n")
}

func TestMissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAll(dir, sampleTables()))
	require.NoError(t, os.Remove(Path(dir, "artists")))

	err := CheckExist(dir)
	var missing MissingFileError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, Path(dir, "artists"), missing.Path)
	require.Equal(t, "missing input: "+Path(dir, "artists"), err.Error())

	_, err = ReadAll(dir)
	require.ErrorAs(t, err, &missing)
}

func TestReadRejectsEmptyKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAll(dir, normalize.Tables{}))
	require.NoError(t, os.WriteFile(Path(dir, "artists"), []byte("artist_id,artist_name\n,Nameless\n"), 0644))

	_, err := ReadAll(dir)
	require.ErrorContains(t, err, "empty key")
}

func TestRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transformed")
	require.NoError(t, WriteAll(dir, sampleTables()))
	require.NoError(t, os.Remove(Path(dir, "events")))

	Remove(dir)
	require.NoDirExists(t, dir)

	// a directory with foreign files is kept
	require.NoError(t, WriteAll(dir, sampleTables()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))
	Remove(dir)
	require.DirExists(t, dir)
	require.NoFileExists(t, Path(dir, "venues"))
}
