package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := NewRecordingAPI(t)
	scoped := NewScopedAPI("fetcher", NewScopedAPI("snapshot", rec))

	scoped.ReportBroken("client.fetch-page", "boom")
	scoped.ReportCount("rows", 4)

	broken := rec.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "snapshot: fetcher: client.fetch-page", broken[0].ID)
	require.Equal(t, []any{"boom"}, broken[0].Params)

	counts := rec.Reports("count")
	require.Len(t, counts, 1)
	require.Equal(t, int64(4), counts[0].Count)
}
