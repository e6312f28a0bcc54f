package normalize

import (
	"database/sql"
	"eventsnap/internal/history"
	"time"
)

type Venue struct {
	VenueID   string
	VenueName sql.NullString
	City      sql.NullString
	State     sql.NullString
	Country   sql.NullString
	Lat       sql.NullFloat64
	Lon       sql.NullFloat64
}

type Artist struct {
	ArtistID   string
	ArtistName sql.NullString
}

type Event struct {
	EventID     string
	Name        sql.NullString
	Url         sql.NullString
	Type        sql.NullString
	Locale      sql.NullString
	Datetime    sql.NullTime
	Status      sql.NullString
	OnsaleDate  sql.NullTime
	OffsaleDate sql.NullTime
	Segment     sql.NullString
	Genre       sql.NullString
	Subgenre    sql.NullString
	Family      sql.NullInt64
	// foreign keys are not required to resolve
	ArtistID sql.NullString
	VenueID  sql.NullString
}

// PriceSnapshot is the price of one event as of one snapshot date.
type PriceSnapshot struct {
	EventID      string
	SnapshotDate time.Time
	MinPrice     sql.NullFloat64
	MaxPrice     sql.NullFloat64
	Currency     sql.NullString
}

// Tables is the normalized form of the whole historical dataset.
type Tables struct {
	Venues       []Venue
	Artists      []Artist
	Events       []Event
	PriceHistory []PriceSnapshot
}

// firstBy keeps the first item for every key, items without a key are
// dropped. Order is preserved.
func firstBy[T any, K comparable](items []T, key func(T) (K, bool)) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k, ok := key(item)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

func VenueOf(r history.Row) Venue {
	return Venue{
		VenueID:   r.VenueID.String,
		VenueName: r.Venue,
		City:      r.City,
		State:     r.State,
		Country:   r.Country,
		Lat:       ParseNumber(r.VenueLat),
		Lon:       ParseNumber(r.VenueLon),
	}
}

func ArtistOf(r history.Row) Artist {
	return Artist{
		ArtistID:   r.ArtistID.String,
		ArtistName: r.Artist,
	}
}

func EventOf(r history.Row) Event {
	return Event{
		EventID:     r.ID.String,
		Name:        r.Name,
		Url:         r.Url,
		Type:        r.Type,
		Locale:      r.Locale,
		Datetime:    ParseEventDatetime(r.Date, r.Time),
		Status:      r.Status,
		OnsaleDate:  ParseTimestamp(r.OnsaleDate),
		OffsaleDate: ParseTimestamp(r.OffsaleDate),
		Segment:     r.Segment,
		Genre:       r.Genre,
		Subgenre:    r.Subgenre,
		Family:      ParseFamily(r.Family),
		ArtistID:    reference(r.ArtistID),
		VenueID:     reference(r.VenueID),
	}
}

// PriceSnapshotOf returns false when the row has no event id or no parseable
// snapshot date.
func PriceSnapshotOf(r history.Row) (PriceSnapshot, bool) {
	snapshot := ParseTimestamp(r.SnapshotDate)
	_, ok := present(r.ID)
	if !ok || !snapshot.Valid {
		return PriceSnapshot{}, false
	}
	return PriceSnapshot{
		EventID:      r.ID.String,
		SnapshotDate: snapshot.Time,
		MinPrice:     ParseNumber(r.MinPrice),
		MaxPrice:     ParseNumber(r.MaxPrice),
		Currency:     r.Currency,
	}, true
}

// present treats an empty id like a missing one, since an empty cell reads
// back as NULL.
func present(id sql.NullString) (string, bool) {
	return id.String, id.Valid && id.String != ""
}

func reference(id sql.NullString) sql.NullString {
	if _, ok := present(id); !ok {
		return sql.NullString{}
	}
	return id
}

type priceKey struct {
	eventID  string
	snapshot time.Time
}

// Transform projects the historical dataset into the four tables. Every
// table keeps the first row seen for its key. Venues and artists are taken
// from the first row that mentions them, which may be an older snapshot than
// the one the loader last wrote.
func Transform(rows []history.Row) Tables {
	withVenue := firstBy(rows, func(r history.Row) (string, bool) {
		return present(r.VenueID)
	})
	withArtist := firstBy(rows, func(r history.Row) (string, bool) {
		return present(r.ArtistID)
	})
	withEvent := firstBy(rows, func(r history.Row) (string, bool) {
		return present(r.ID)
	})

	tables := Tables{
		Venues:       make([]Venue, len(withVenue)),
		Artists:      make([]Artist, len(withArtist)),
		Events:       make([]Event, len(withEvent)),
		PriceHistory: make([]PriceSnapshot, 0, len(rows)),
	}
	for i, r := range withVenue {
		tables.Venues[i] = VenueOf(r)
	}
	for i, r := range withArtist {
		tables.Artists[i] = ArtistOf(r)
	}
	for i, r := range withEvent {
		tables.Events[i] = EventOf(r)
	}

	for _, r := range rows {
		p, ok := PriceSnapshotOf(r)
		if ok {
			tables.PriceHistory = append(tables.PriceHistory, p)
		}
	}
	tables.PriceHistory = firstBy(tables.PriceHistory, func(p PriceSnapshot) (priceKey, bool) {
		return priceKey{eventID: p.EventID, snapshot: p.SnapshotDate}, true
	})

	return tables
}
