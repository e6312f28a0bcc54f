package snapshot

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"eventsnap/internal/history"
	"eventsnap/internal/ticketmaster"
)

func text(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func name(n *ticketmaster.Named) sql.NullString {
	if n == nil {
		return sql.NullString{}
	}
	return text(n.Name)
}

// rawText renders a scalar json value as text: strings unquoted, numbers
// verbatim and booleans as TRUE/FALSE. Anything else is null.
func rawText(raw json.RawMessage) sql.NullString {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return sql.NullString{}
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return sql.NullString{}
		}
		return sql.NullString{String: s, Valid: true}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return sql.NullString{}
		}
		if b {
			return sql.NullString{String: "TRUE", Valid: true}
		}
		return sql.NullString{String: "FALSE", Valid: true}
	case '{', '[':
		return sql.NullString{}
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: n.String(), Valid: true}
}

// Flatten turns a nested event into a dataset row stamped with `snapshotDate`.
// Only the first venue, attraction, classification and price range are kept.
// Missing nested objects produce nulls.
func Flatten(e ticketmaster.RawEvent, snapshotDate string) history.Row {
	row := history.Row{
		ID:           text(e.ID),
		Name:         text(e.Name),
		Url:          text(e.Url),
		Type:         text(e.Type),
		Locale:       text(e.Locale),
		SnapshotDate: sql.NullString{String: snapshotDate, Valid: snapshotDate != ""},
	}

	if e.Dates != nil {
		if e.Dates.Start != nil {
			row.Date = text(e.Dates.Start.LocalDate)
			row.Time = text(e.Dates.Start.LocalTime)
		}
		if e.Dates.Status != nil {
			row.Status = text(e.Dates.Status.Code)
		}
	}
	if e.Sales != nil && e.Sales.Public != nil {
		row.OnsaleDate = text(e.Sales.Public.StartDateTime)
		row.OffsaleDate = text(e.Sales.Public.EndDateTime)
	}

	if e.Embedded != nil {
		if len(e.Embedded.Venues) > 0 {
			v := e.Embedded.Venues[0]
			row.Venue = text(v.Name)
			row.VenueID = text(v.ID)
			row.City = name(v.City)
			row.State = name(v.State)
			row.Country = name(v.Country)
			if v.Location != nil {
				row.VenueLat = rawText(v.Location.Latitude)
				row.VenueLon = rawText(v.Location.Longitude)
			}
		}
		if len(e.Embedded.Attractions) > 0 {
			a := e.Embedded.Attractions[0]
			row.Artist = text(a.Name)
			row.ArtistID = text(a.ID)
		}
	}

	if len(e.Classifications) > 0 {
		c := e.Classifications[0]
		row.Segment = name(c.Segment)
		row.Genre = name(c.Genre)
		row.Subgenre = name(c.SubGenre)
		row.Family = rawText(c.Family)
	}

	if len(e.PriceRanges) > 0 {
		p := e.PriceRanges[0]
		row.MinPrice = rawText(p.Min)
		row.MaxPrice = rawText(p.Max)
		row.Currency = text(p.Currency)
	}

	return row
}
