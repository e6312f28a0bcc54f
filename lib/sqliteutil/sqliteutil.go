package sqliteutil

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// IsRemote reports whether target names a libsql server instead of a local file.
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "libsql://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "wss://") ||
		strings.HasPrefix(target, "ws://")
}

// WithAuthToken attaches a libsql auth token to a remote `target`. Local
// paths and an empty token are returned unchanged.
func WithAuthToken(target, token string) string {
	if token == "" || !IsRemote(target) {
		return target
	}
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenDB opens a database at `target` and applies `schema` if it is non-empty.
// A local path is created (along with its parent directories) if it does not
// exist, a libsql url is opened with the libsql driver.
func OpenDB(schema, target string) (*sql.DB, error) {
	if target == "" {
		return nil, wrapOpenDB(fmt.Errorf("a path was not specified"))
	}

	var db *sql.DB
	if IsRemote(target) {
		var err error
		db, err = sql.Open("libsql", target)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	} else {
		if target != ":memory:" {
			err := os.MkdirAll(filepath.Dir(target), 0777)
			if err != nil {
				return nil, wrapOpenDB(err)
			}
		}
		var err error
		db, err = sql.Open("sqlite", target)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		// see this stackoverflow post for information on why the following
		// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		db.SetMaxOpenConns(1)
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, wrapOpenDB(err)
		}
	}

	if schema != "" {
		_, err := db.Exec(schema)
		if err != nil {
			db.Close()
			return nil, wrapOpenDB(fmt.Errorf("apply schema: %w", err))
		}
	}
	return db, nil
}

// OpenReadOnly opens an existing database without writing to it. A local
// file that does not exist is an error instead of being created.
func OpenReadOnly(target string) (*sql.DB, error) {
	if target == "" {
		return nil, wrapOpenDB(fmt.Errorf("a path was not specified"))
	}
	if IsRemote(target) {
		db, err := sql.Open("libsql", target)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		return db, nil
	}

	_, err := os.Stat(target)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	uri := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}
	db, err := sql.Open("sqlite", uri.String())
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
