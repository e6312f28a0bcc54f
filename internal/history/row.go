package history

import "database/sql"

// Row is one flattened event record as of one snapshot date. Every column is
// kept as nullable text, coercion into typed values happens at transform time.
type Row struct {
	ID           sql.NullString
	Name         sql.NullString
	Url          sql.NullString
	Type         sql.NullString
	Locale       sql.NullString
	Date         sql.NullString
	Time         sql.NullString
	Status       sql.NullString
	OnsaleDate   sql.NullString
	OffsaleDate  sql.NullString
	Venue        sql.NullString
	VenueID      sql.NullString
	City         sql.NullString
	State        sql.NullString
	Country      sql.NullString
	VenueLat     sql.NullString
	VenueLon     sql.NullString
	Artist       sql.NullString
	ArtistID     sql.NullString
	Segment      sql.NullString
	Genre        sql.NullString
	Subgenre     sql.NullString
	Family       sql.NullString
	MinPrice     sql.NullString
	MaxPrice     sql.NullString
	Currency     sql.NullString
	SnapshotDate sql.NullString
}

type column struct {
	name string
	get  func(r *Row) *sql.NullString
}

// columns fixes the on-disk column names and order.
var columns = []column{
	{"id", func(r *Row) *sql.NullString { return &r.ID }},
	{"name", func(r *Row) *sql.NullString { return &r.Name }},
	{"url", func(r *Row) *sql.NullString { return &r.Url }},
	{"type", func(r *Row) *sql.NullString { return &r.Type }},
	{"locale", func(r *Row) *sql.NullString { return &r.Locale }},
	{"date", func(r *Row) *sql.NullString { return &r.Date }},
	{"time", func(r *Row) *sql.NullString { return &r.Time }},
	{"status", func(r *Row) *sql.NullString { return &r.Status }},
	{"onsale_date", func(r *Row) *sql.NullString { return &r.OnsaleDate }},
	{"offsale_date", func(r *Row) *sql.NullString { return &r.OffsaleDate }},
	{"venue", func(r *Row) *sql.NullString { return &r.Venue }},
	{"venue_id", func(r *Row) *sql.NullString { return &r.VenueID }},
	{"city", func(r *Row) *sql.NullString { return &r.City }},
	{"state", func(r *Row) *sql.NullString { return &r.State }},
	{"country", func(r *Row) *sql.NullString { return &r.Country }},
	{"venue_lat", func(r *Row) *sql.NullString { return &r.VenueLat }},
	{"venue_lon", func(r *Row) *sql.NullString { return &r.VenueLon }},
	{"artist", func(r *Row) *sql.NullString { return &r.Artist }},
	{"artist_id", func(r *Row) *sql.NullString { return &r.ArtistID }},
	{"segment", func(r *Row) *sql.NullString { return &r.Segment }},
	{"genre", func(r *Row) *sql.NullString { return &r.Genre }},
	{"subgenre", func(r *Row) *sql.NullString { return &r.Subgenre }},
	{"family", func(r *Row) *sql.NullString { return &r.Family }},
	{"min_price", func(r *Row) *sql.NullString { return &r.MinPrice }},
	{"max_price", func(r *Row) *sql.NullString { return &r.MaxPrice }},
	{"currency", func(r *Row) *sql.NullString { return &r.Currency }},
	{"snapshot_date", func(r *Row) *sql.NullString { return &r.SnapshotDate }},
}

// Columns returns the column names of the dataset in file order.
func Columns() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// Key is the natural key of the dataset.
type Key struct {
	ID           sql.NullString
	SnapshotDate sql.NullString
}

func (r Row) Key() Key {
	return Key{ID: r.ID, SnapshotDate: r.SnapshotDate}
}

// UniqueBy returns the rows with the first occurrence of each key kept, in
// their original order. Rows with a null key collapse onto the same key.
func UniqueBy[K comparable](rows []Row, key func(Row) K) []Row {
	seen := make(map[K]struct{}, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// ByID is the key used to de-duplicate a single fetch.
func ByID(r Row) sql.NullString {
	return r.ID
}

// ByKey is the key used to de-duplicate across snapshots.
func ByKey(r Row) Key {
	return r.Key()
}

// Merge appends `fresh` to `old` and drops every row whose (id, snapshot_date)
// was already seen, so re-running a fetch on the same day changes nothing.
// Neither input is modified.
func Merge(old, fresh []Row) []Row {
	combined := make([]Row, 0, len(old)+len(fresh))
	combined = append(combined, old...)
	combined = append(combined, fresh...)
	return UniqueBy(combined, ByKey)
}
