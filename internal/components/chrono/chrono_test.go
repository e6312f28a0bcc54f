package chrono

import (
	"eventsnap/internal/components/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	at := time.Date(2024, time.May, 1, 23, 59, 0, 0, time.UTC)
	require.Equal(t, "2024-05-01", Date(at))
	require.Equal(t, "2024-05-01", Date(FixedImpl{At: at}.Now()))
}

func TestStandardImplIsUTC(t *testing.T) {
	require.Equal(t, time.UTC, NewStandardImpl().Now().Location())
}

func TestStandardCronRejectsBadSpec(t *testing.T) {
	c := NewStandardCron(telemetry.NewRecordingAPI(t), time.UTC)
	defer c.Stop()

	require.Error(t, c.Cron("not a cron spec", func() {}))
	require.NoError(t, c.Cron("0 6 * * *", func() {}))
}
