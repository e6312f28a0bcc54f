package testutil

import (
	"database/sql"
	"eventsnap/lib/sqliteutil"
	"path/filepath"
	"testing"
)

// OpenDB opens a fresh database file under t.TempDir() with `schema`
// applied. It is closed when the test ends.
func OpenDB(t testing.TB, schema string) *sql.DB {
	t.Helper()

	database, err := sqliteutil.OpenDB(schema, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}
