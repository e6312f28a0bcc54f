package db

import (
	"context"
	"database/sql"
)

const upsertVenue = `-- name: UpsertVenue :exec
insert into venues (venue_id, venue_name, city, state, country, lat, lon)
values (?, ?, ?, ?, ?, ?, ?)
on conflict (venue_id) do update set
    venue_name = excluded.venue_name,
    city = excluded.city,
    state = excluded.state,
    country = excluded.country,
    lat = excluded.lat,
    lon = excluded.lon
`

type UpsertVenueParams struct {
	VenueID   string
	VenueName sql.NullString
	City      sql.NullString
	State     sql.NullString
	Country   sql.NullString
	Lat       sql.NullFloat64
	Lon       sql.NullFloat64
}

func (q *Queries) UpsertVenue(ctx context.Context, arg UpsertVenueParams) error {
	_, err := q.exec(ctx, q.upsertVenueStmt, upsertVenue,
		arg.VenueID,
		arg.VenueName,
		arg.City,
		arg.State,
		arg.Country,
		arg.Lat,
		arg.Lon,
	)
	return err
}

const upsertArtist = `-- name: UpsertArtist :exec
insert into artists (artist_id, artist_name)
values (?, ?)
on conflict (artist_id) do update set
    artist_name = excluded.artist_name
`

type UpsertArtistParams struct {
	ArtistID   string
	ArtistName sql.NullString
}

func (q *Queries) UpsertArtist(ctx context.Context, arg UpsertArtistParams) error {
	_, err := q.exec(ctx, q.upsertArtistStmt, upsertArtist, arg.ArtistID, arg.ArtistName)
	return err
}

const upsertEvent = `-- name: UpsertEvent :exec
insert into events (
    event_id, name, url, type, locale, datetime, status, onsale_date, offsale_date,
    segment, genre, subgenre, family, artist_id, venue_id
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (event_id) do update set
    name = excluded.name,
    url = excluded.url,
    type = excluded.type,
    locale = excluded.locale,
    datetime = excluded.datetime,
    status = excluded.status,
    onsale_date = excluded.onsale_date,
    offsale_date = excluded.offsale_date,
    segment = excluded.segment,
    genre = excluded.genre,
    subgenre = excluded.subgenre,
    family = excluded.family,
    artist_id = excluded.artist_id,
    venue_id = excluded.venue_id
`

type UpsertEventParams struct {
	EventID     string
	Name        sql.NullString
	Url         sql.NullString
	Type        sql.NullString
	Locale      sql.NullString
	Datetime    sql.NullString
	Status      sql.NullString
	OnsaleDate  sql.NullString
	OffsaleDate sql.NullString
	Segment     sql.NullString
	Genre       sql.NullString
	Subgenre    sql.NullString
	Family      sql.NullInt64
	ArtistID    sql.NullString
	VenueID     sql.NullString
}

func (q *Queries) UpsertEvent(ctx context.Context, arg UpsertEventParams) error {
	_, err := q.exec(ctx, q.upsertEventStmt, upsertEvent,
		arg.EventID,
		arg.Name,
		arg.Url,
		arg.Type,
		arg.Locale,
		arg.Datetime,
		arg.Status,
		arg.OnsaleDate,
		arg.OffsaleDate,
		arg.Segment,
		arg.Genre,
		arg.Subgenre,
		arg.Family,
		arg.ArtistID,
		arg.VenueID,
	)
	return err
}

const upsertPriceSnapshot = `-- name: UpsertPriceSnapshot :exec
insert into event_price_history (event_id, snapshot_date, min_price, max_price, currency)
values (?, ?, ?, ?, ?)
on conflict (event_id, snapshot_date) do update set
    min_price = excluded.min_price,
    max_price = excluded.max_price,
    currency = excluded.currency
`

type UpsertPriceSnapshotParams struct {
	EventID      string
	SnapshotDate string
	MinPrice     sql.NullFloat64
	MaxPrice     sql.NullFloat64
	Currency     sql.NullString
}

func (q *Queries) UpsertPriceSnapshot(ctx context.Context, arg UpsertPriceSnapshotParams) error {
	_, err := q.exec(ctx, q.upsertPriceSnapshotStmt, upsertPriceSnapshot,
		arg.EventID,
		arg.SnapshotDate,
		arg.MinPrice,
		arg.MaxPrice,
		arg.Currency,
	)
	return err
}

const listTables = `-- name: ListTables :many
select name from sqlite_master
where type = 'table' and name not like 'sqlite_%'
order by name
`

func (q *Queries) ListTables(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
