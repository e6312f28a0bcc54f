package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func str(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestMerge(t *testing.T) {
	old := []Row{
		{ID: str("a"), SnapshotDate: str("2024-05-01"), MinPrice: str("10")},
		{ID: str("b"), SnapshotDate: str("2024-05-01")},
	}
	fresh := []Row{
		{ID: str("a"), SnapshotDate: str("2024-05-01"), MinPrice: str("99")},
		{ID: str("a"), SnapshotDate: str("2024-05-02"), MinPrice: str("12")},
		{ID: str("c"), SnapshotDate: str("2024-05-02")},
	}
	oldCopy := append([]Row(nil), old...)
	freshCopy := append([]Row(nil), fresh...)

	merged := Merge(old, fresh)
	require.Len(t, merged, 4)
	require.Equal(t, "10", merged[0].MinPrice.String, "existing rows win on the same key")
	require.Equal(t, "12", merged[2].MinPrice.String)

	require.Empty(t, cmp.Diff(oldCopy, old))
	require.Empty(t, cmp.Diff(freshCopy, fresh))

	again := Merge(merged, fresh)
	require.Empty(t, cmp.Diff(merged, again))
}

func TestUniqueByID(t *testing.T) {
	rows := []Row{
		{ID: str("a"), Name: str("first")},
		{ID: str("a"), Name: str("second")},
		{Name: str("null id 1")},
		{Name: str("null id 2")},
		{ID: str("b")},
	}
	out := UniqueBy(rows, ByID)
	require.Len(t, out, 3)
	require.Equal(t, "first", out[0].Name.String)
	require.Equal(t, "null id 1", out[1].Name.String)
	require.Equal(t, "b", out[2].ID.String)
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "events_history.parquet")
	rows := []Row{
		{
			ID:           str("ev1"),
			Name:         str("Show"),
			Date:         str("2024-05-01"),
			Time:         str("19:30:00"),
			VenueLat:     str("40.7"),
			Family:       str("FALSE"),
			MinPrice:     str("45.5"),
			SnapshotDate: str("2024-04-20"),
		},
		{ID: str("ev2"), SnapshotDate: str("2024-04-20")},
	}

	require.NoError(t, Write(path, rows))
	got, err := Read(context.Background(), path)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(rows, got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestReadMissing(t *testing.T) {
	_, err := Read(context.Background(), filepath.Join(t.TempDir(), "absent.parquet"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestColumns(t *testing.T) {
	cols := Columns()
	require.Equal(t, "id", cols[0])
	require.Equal(t, "snapshot_date", cols[len(cols)-1])
}
