package normalize

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the text form of every timestamp in the transformed tables.
const TimestampLayout = "2006-01-02 15:04:05"

var eventDatetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var timestampLayouts = []string{
	time.RFC3339,
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

func parseFirst(value string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseEventDatetime combines a local date and an optional local time. When
// the combination does not parse the date alone is used, so a missing time
// lands on midnight. The result is wall-clock time, no zone is applied.
func ParseEventDatetime(date, clock sql.NullString) sql.NullTime {
	if !date.Valid {
		return sql.NullTime{}
	}
	d := strings.TrimSpace(date.String)
	if clock.Valid {
		combined := d + " " + strings.TrimSpace(clock.String)
		if t, ok := parseFirst(combined, eventDatetimeLayouts); ok {
			return sql.NullTime{Time: t, Valid: true}
		}
	}
	t, ok := parseFirst(d, []string{time.DateOnly})
	if !ok {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// ParseTimestamp accepts RFC3339 timestamps (normalized to UTC), plain
// "date time" text and bare dates. Anything else is null.
func ParseTimestamp(s sql.NullString) sql.NullTime {
	if !s.Valid {
		return sql.NullTime{}
	}
	t, ok := parseFirst(strings.TrimSpace(s.String), timestampLayouts)
	if !ok {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// ParseFamily maps "TRUE" to 1 and "FALSE" to 0, every other value is null.
func ParseFamily(s sql.NullString) sql.NullInt64 {
	if !s.Valid {
		return sql.NullInt64{}
	}
	switch s.String {
	case "TRUE":
		return sql.NullInt64{Int64: 1, Valid: true}
	case "FALSE":
		return sql.NullInt64{Int64: 0, Valid: true}
	}
	return sql.NullInt64{}
}

// ParseNumber parses a finite decimal number, null when it cannot.
func ParseNumber(s sql.NullString) sql.NullFloat64 {
	if !s.Valid {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s.String), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// FormatTimestamp renders a nullable timestamp in TimestampLayout, null is "".
func FormatTimestamp(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(TimestampLayout)
}
