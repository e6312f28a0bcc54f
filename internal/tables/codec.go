package tables

import (
	"database/sql"
	"eventsnap/internal/normalize"
	"fmt"
	"strconv"
	"time"
)

// codec maps one table type to and from csv records.
type codec[T any] struct {
	name    string
	columns []string
	encode  func(T) []string
	decode  func(r *record) T
}

// record is one csv line addressed by column name. The first conversion
// failure is kept in err, later ones are ignored.
type record struct {
	index  map[string]int
	values []string
	err    error
}

func newRecord(header []string) *record {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	return &record{index: index}
}

func (r *record) fail(col, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("column %s: parse %q: %w", col, value, err)
	}
}

func (r *record) raw(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

func (r *record) key(col string) string {
	v := r.raw(col)
	if v == "" && r.err == nil {
		r.err = fmt.Errorf("column %s: empty key", col)
	}
	return v
}

func (r *record) text(col string) sql.NullString {
	v := r.raw(col)
	return sql.NullString{String: v, Valid: v != ""}
}

func (r *record) float(col string) sql.NullFloat64 {
	v := r.raw(col)
	if v == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(col, v, err)
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func (r *record) int(col string) sql.NullInt64 {
	v := r.raw(col)
	if v == "" {
		return sql.NullInt64{}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.fail(col, v, err)
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

func (r *record) timestamp(col string) sql.NullTime {
	v := r.raw(col)
	if v == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(normalize.TimestampLayout, v)
	if err != nil {
		r.fail(col, v, err)
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func text(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

func float(f sql.NullFloat64) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}

func integer(n sql.NullInt64) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Int64, 10)
}

var venues = codec[normalize.Venue]{
	name:    "venues",
	columns: []string{"venue_id", "venue_name", "city", "state", "country", "lat", "lon"},
	encode: func(v normalize.Venue) []string {
		return []string{v.VenueID, text(v.VenueName), text(v.City), text(v.State), text(v.Country), float(v.Lat), float(v.Lon)}
	},
	decode: func(r *record) normalize.Venue {
		return normalize.Venue{
			VenueID:   r.key("venue_id"),
			VenueName: r.text("venue_name"),
			City:      r.text("city"),
			State:     r.text("state"),
			Country:   r.text("country"),
			Lat:       r.float("lat"),
			Lon:       r.float("lon"),
		}
	},
}

var artists = codec[normalize.Artist]{
	name:    "artists",
	columns: []string{"artist_id", "artist_name"},
	encode: func(a normalize.Artist) []string {
		return []string{a.ArtistID, text(a.ArtistName)}
	},
	decode: func(r *record) normalize.Artist {
		return normalize.Artist{
			ArtistID:   r.key("artist_id"),
			ArtistName: r.text("artist_name"),
		}
	},
}

var events = codec[normalize.Event]{
	name: "events",
	columns: []string{
		"event_id", "name", "url", "type", "locale", "datetime", "status",
		"onsale_date", "offsale_date", "segment", "genre", "subgenre", "family",
		"artist_id", "venue_id",
	},
	encode: func(e normalize.Event) []string {
		return []string{
			e.EventID, text(e.Name), text(e.Url), text(e.Type), text(e.Locale),
			normalize.FormatTimestamp(e.Datetime), text(e.Status),
			normalize.FormatTimestamp(e.OnsaleDate), normalize.FormatTimestamp(e.OffsaleDate),
			text(e.Segment), text(e.Genre), text(e.Subgenre), integer(e.Family),
			text(e.ArtistID), text(e.VenueID),
		}
	},
	decode: func(r *record) normalize.Event {
		return normalize.Event{
			EventID:     r.key("event_id"),
			Name:        r.text("name"),
			Url:         r.text("url"),
			Type:        r.text("type"),
			Locale:      r.text("locale"),
			Datetime:    r.timestamp("datetime"),
			Status:      r.text("status"),
			OnsaleDate:  r.timestamp("onsale_date"),
			OffsaleDate: r.timestamp("offsale_date"),
			Segment:     r.text("segment"),
			Genre:       r.text("genre"),
			Subgenre:    r.text("subgenre"),
			Family:      r.int("family"),
			ArtistID:    r.text("artist_id"),
			VenueID:     r.text("venue_id"),
		}
	},
}

var priceHistory = codec[normalize.PriceSnapshot]{
	name:    "event_price_history",
	columns: []string{"event_id", "snapshot_date", "min_price", "max_price", "currency"},
	encode: func(p normalize.PriceSnapshot) []string {
		return []string{
			p.EventID, p.SnapshotDate.Format(normalize.TimestampLayout),
			float(p.MinPrice), float(p.MaxPrice), text(p.Currency),
		}
	},
	decode: func(r *record) normalize.PriceSnapshot {
		p := normalize.PriceSnapshot{
			EventID:  r.key("event_id"),
			MinPrice: r.float("min_price"),
			MaxPrice: r.float("max_price"),
			Currency: r.text("currency"),
		}
		r.key("snapshot_date")
		p.SnapshotDate = r.timestamp("snapshot_date").Time
		return p
	},
}
