package validate

import (
	"context"
	"database/sql"
	"eventsnap/internal/db"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("eventsnap/validate")

type TableCount struct {
	Name string
	Rows int64
}

// NullRate is the fraction of rows with a null key. Tables with a single key
// column leave Secondary null.
type NullRate struct {
	Table          string
	PNullID        sql.NullFloat64
	Secondary      string
	PNullSecondary sql.NullFloat64
}

type Uniqueness struct {
	Table         string
	KeyFields     string
	TotalRows     int64
	DistinctKeys  int64
	DuplicateKeys int64
}

// Orphans is the fraction of events whose reference does not resolve. A null
// reference counts as unresolved.
type Orphans struct {
	FK       string
	POrphans sql.NullFloat64
}

type CurrencySanity struct {
	Currency     string
	TotalRows    int64
	NullRate     sql.NullFloat64
	NegativeRate sql.NullFloat64
	ZeroRate     sql.NullFloat64
}

type Report struct {
	RowCounts  []TableCount
	NullRates  []NullRate
	Uniqueness []Uniqueness
	Orphans    []Orphans
	Currencies []CurrencySanity
}

const nullRatesQuery = `
select 'events', 'datetime',
    sum(event_id is null) * 1.0 / count(*),
    sum(datetime is null) * 1.0 / count(*)
from events
union all
select 'event_price_history', 'snapshot_date',
    sum(event_id is null) * 1.0 / count(*),
    sum(snapshot_date is null) * 1.0 / count(*)
from event_price_history
union all
select 'venues', '', sum(venue_id is null) * 1.0 / count(*), null
from venues
union all
select 'artists', '', sum(artist_id is null) * 1.0 / count(*), null
from artists
`

const uniquenessQuery = `
select 'events', 'event_id',
    count(*), count(distinct event_id), count(*) - count(distinct event_id)
from events
union all
select 'venues', 'venue_id',
    count(*), count(distinct venue_id), count(*) - count(distinct venue_id)
from venues
union all
select 'artists', 'artist_id',
    count(*), count(distinct artist_id), count(*) - count(distinct artist_id)
from artists
union all
select 'event_price_history', '(event_id, snapshot_date)',
    count(*),
    count(distinct event_id || '|' || coalesce(cast(snapshot_date as text), '')),
    count(*) - count(distinct event_id || '|' || coalesce(cast(snapshot_date as text), ''))
from event_price_history
`

const orphansQuery = `
select 'events.artist_id -> artists',
    sum(not exists (select 1 from artists a where a.artist_id = e.artist_id)) * 1.0 / count(*)
from events e
union all
select 'events.venue_id -> venues',
    sum(not exists (select 1 from venues v where v.venue_id = e.venue_id)) * 1.0 / count(*)
from events e
`

const currenciesQuery = `
select
    coalesce(currency, '(NULL)') as currency,
    count(*) as total_rows,
    1.0 * sum(min_price is null) / count(*),
    1.0 * sum(min_price < 0) / count(*),
    1.0 * sum(min_price = 0) / count(*)
from event_price_history
group by currency
order by total_rows desc, currency
`

func queryAll[T any](ctx context.Context, database *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := database.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func rowCounts(ctx context.Context, database *sql.DB) ([]TableCount, error) {
	names, err := db.New(database).ListTables(ctx)
	if err != nil {
		return nil, err
	}
	counts := make([]TableCount, len(names))
	for i, name := range names {
		counts[i].Name = name
		err := database.QueryRowContext(ctx, fmt.Sprintf(`select count(*) from "%s"`, name)).Scan(&counts[i].Rows)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
	}
	return counts, nil
}

// Run computes the diagnostic report. It only reads from the store and does
// not judge the numbers, anomalies are for the reader to act on.
func Run(ctx context.Context, database *sql.DB) (Report, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	report, err := run(ctx, database)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}
	return report, nil
}

func run(ctx context.Context, database *sql.DB) (Report, error) {
	var report Report
	var err error

	report.RowCounts, err = rowCounts(ctx, database)
	if err != nil {
		return report, fmt.Errorf("row counts: %w", err)
	}

	report.NullRates, err = queryAll(ctx, database, nullRatesQuery, func(rows *sql.Rows) (NullRate, error) {
		var r NullRate
		err := rows.Scan(&r.Table, &r.Secondary, &r.PNullID, &r.PNullSecondary)
		return r, err
	})
	if err != nil {
		return report, fmt.Errorf("null rates: %w", err)
	}

	report.Uniqueness, err = queryAll(ctx, database, uniquenessQuery, func(rows *sql.Rows) (Uniqueness, error) {
		var u Uniqueness
		err := rows.Scan(&u.Table, &u.KeyFields, &u.TotalRows, &u.DistinctKeys, &u.DuplicateKeys)
		return u, err
	})
	if err != nil {
		return report, fmt.Errorf("uniqueness: %w", err)
	}

	report.Orphans, err = queryAll(ctx, database, orphansQuery, func(rows *sql.Rows) (Orphans, error) {
		var o Orphans
		err := rows.Scan(&o.FK, &o.POrphans)
		return o, err
	})
	if err != nil {
		return report, fmt.Errorf("orphans: %w", err)
	}

	report.Currencies, err = queryAll(ctx, database, currenciesQuery, func(rows *sql.Rows) (CurrencySanity, error) {
		var c CurrencySanity
		err := rows.Scan(&c.Currency, &c.TotalRows, &c.NullRate, &c.NegativeRate, &c.ZeroRate)
		return c, err
	})
	if err != nil {
		return report, fmt.Errorf("currencies: %w", err)
	}

	return report, nil
}
