package validate

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.SetTitle(title)
	return t
}

func rate(f sql.NullFloat64) string {
	if !f.Valid {
		return "NULL"
	}
	return strconv.FormatFloat(f.Float64, 'f', 4, 64)
}

// Render prints the report as one table per check, followed by a footer line.
func Render(w io.Writer, r Report) {
	t := newTable(w, "Row counts")
	t.AppendHeader(table.Row{"name", "rows"})
	for _, c := range r.RowCounts {
		t.AppendRow(table.Row{c.Name, c.Rows})
	}
	t.Render()

	t = newTable(w, "Null rates on key columns")
	t.AppendHeader(table.Row{"table", "p_null_id", "column", "p_null"})
	for _, n := range r.NullRates {
		secondary := "NULL"
		if n.Secondary != "" {
			secondary = rate(n.PNullSecondary)
		}
		t.AppendRow(table.Row{n.Table, rate(n.PNullID), n.Secondary, secondary})
	}
	t.Render()

	t = newTable(w, "Uniqueness checks")
	t.AppendHeader(table.Row{"table_name", "key_fields", "total_rows", "distinct_keys", "duplicate_keys"})
	for _, u := range r.Uniqueness {
		t.AppendRow(table.Row{u.Table, u.KeyFields, u.TotalRows, u.DistinctKeys, u.DuplicateKeys})
	}
	t.Render()

	t = newTable(w, "Foreign-key coverage (orphans)")
	t.AppendHeader(table.Row{"fk", "p_orphans"})
	for _, o := range r.Orphans {
		t.AppendRow(table.Row{o.FK, rate(o.POrphans)})
	}
	t.Render()

	t = newTable(w, "Currencies & min_price sanity")
	t.AppendHeader(table.Row{"currency", "total_rows", "min_price_null_rate", "min_price_negative_rate", "min_price_zero_rate"})
	for _, c := range r.Currencies {
		t.AppendRow(table.Row{c.Currency, c.TotalRows, rate(c.NullRate), rate(c.NegativeRate), rate(c.ZeroRate)})
	}
	t.Render()

	fmt.Fprintln(w, "Validation complete.")
}
