package tables

import (
	"encoding/csv"
	"errors"
	"eventsnap/internal/normalize"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// MissingFileError is returned when an expected table file does not exist.
type MissingFileError struct {
	Path string
}

func (e MissingFileError) Error() string {
	return fmt.Sprintf("missing input: %s", e.Path)
}

// Names lists the table files in load order.
func Names() []string {
	return []string{venues.name, artists.name, events.name, priceHistory.name}
}

func Path(dir, name string) string {
	return filepath.Join(dir, name+".csv")
}

func Paths(dir string) []string {
	names := Names()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = Path(dir, n)
	}
	return paths
}

// CheckExist returns a MissingFileError for the first table file in `dir`
// that does not exist.
func CheckExist(dir string) error {
	for _, p := range Paths(dir) {
		_, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return MissingFileError{Path: p}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeTable[T any](dir string, c codec[T], rows []T) error {
	path := Path(dir, c.name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	err = w.Write(c.columns)
	if err != nil {
		return err
	}
	for _, row := range rows {
		err = w.Write(c.encode(row))
		if err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// WriteAll writes one csv file per table into `dir`, creating it if needed.
// Null values are written as empty cells.
func WriteAll(dir string, t normalize.Tables) error {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	err = writeTable(dir, venues, t.Venues)
	if err != nil {
		return fmt.Errorf("write venues: %w", err)
	}
	err = writeTable(dir, artists, t.Artists)
	if err != nil {
		return fmt.Errorf("write artists: %w", err)
	}
	err = writeTable(dir, events, t.Events)
	if err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	err = writeTable(dir, priceHistory, t.PriceHistory)
	if err != nil {
		return fmt.Errorf("write event_price_history: %w", err)
	}
	return nil
}

func readTable[T any](dir string, c codec[T]) ([]T, error) {
	path := Path(dir, c.name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, MissingFileError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rec := newRecord(header)

	var out []T
	for line := 2; ; line++ {
		values, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rec.values = values
		rec.err = nil
		row := c.decode(rec)
		if rec.err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, rec.err)
		}
		out = append(out, row)
	}
	return out, nil
}

// ReadAll reads the four table files from `dir`. A missing file fails with
// MissingFileError before anything else is read.
func ReadAll(dir string) (normalize.Tables, error) {
	var t normalize.Tables
	err := CheckExist(dir)
	if err != nil {
		return t, err
	}
	t.Venues, err = readTable(dir, venues)
	if err != nil {
		return t, err
	}
	t.Artists, err = readTable(dir, artists)
	if err != nil {
		return t, err
	}
	t.Events, err = readTable(dir, events)
	if err != nil {
		return t, err
	}
	t.PriceHistory, err = readTable(dir, priceHistory)
	if err != nil {
		return t, err
	}
	return t, nil
}

// Remove deletes the table files and then `dir` itself. Missing files and
// a directory that is not empty are ignored.
func Remove(dir string) {
	for _, p := range Paths(dir) {
		err := os.Remove(p)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("remove table file", "path", p, "err", err)
		}
	}
	_ = os.Remove(dir)
}
