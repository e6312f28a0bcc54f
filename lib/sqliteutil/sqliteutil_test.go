package sqliteutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenDBCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "store.db")
	db, err := OpenDB(`CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT);`, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO kv (k, v) VALUES ('a', 'b')`)
	require.NoError(t, err)

	var v string
	require.NoError(t, db.QueryRow(`SELECT v FROM kv WHERE k = 'a'`).Scan(&v))
	require.Equal(t, "b", v)
	require.FileExists(t, path)
}

func TestOpenDBRequiresTarget(t *testing.T) {
	_, err := OpenDB("", "")
	require.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	require.True(t, IsRemote("libsql://events-db.turso.io"))
	require.True(t, IsRemote("https://events-db.turso.io"))
	require.False(t, IsRemote("data/events.db"))
	require.False(t, IsRemote(":memory:"))
}

func TestWithAuthToken(t *testing.T) {
	require.Equal(t, "libsql://events-db.turso.io?authToken=secret", WithAuthToken("libsql://events-db.turso.io", "secret"))
	require.Equal(t, "data/events.db", WithAuthToken("data/events.db", "secret"))
	require.Equal(t, "libsql://events-db.turso.io", WithAuthToken("libsql://events-db.turso.io", ""))
}

func TestOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	created, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = created.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT); INSERT INTO kv VALUES ('a', 'b');`)
	require.NoError(t, err)
	require.NoError(t, created.Close())

	db, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer db.Close()

	var v string
	require.NoError(t, db.QueryRow(`SELECT v FROM kv WHERE k = 'a'`).Scan(&v))
	require.Equal(t, "b", v)

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	require.Equal(t, "delete", mode)

	_, err = db.Exec(`INSERT INTO kv VALUES ('c', 'd')`)
	require.Error(t, err)
	require.NoFileExists(t, path+"-wal")
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	_, err := OpenReadOnly(path)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.NoFileExists(t, path)
}
