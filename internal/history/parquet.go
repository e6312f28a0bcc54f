package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

const readBatchSize = 4096

func schema() *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		fields[i] = arrow.Field{Name: c.name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// Read loads every row of the parquet file at `path`. Columns missing from
// the file read as null, extra columns are ignored. A missing file is
// reported with an error satisfying errors.Is(err, os.ErrNotExist).
func Read(ctx context.Context, path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(
		ctx, f,
		parquet.NewReaderProperties(mem),
		pqarrow.ArrowReadProperties{},
		mem,
	)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer tbl.Release()

	indices := make([]int, len(columns))
	for i, c := range columns {
		indices[i] = -1
		if found := tbl.Schema().FieldIndices(c.name); len(found) > 0 {
			indices[i] = found[0]
		}
	}

	rows := make([]Row, 0, tbl.NumRows())
	tr := array.NewTableReader(tbl, readBatchSize)
	defer tr.Release()
	for tr.Next() {
		rec := tr.Record()
		n := int(rec.NumRows())
		start := len(rows)
		rows = append(rows, make([]Row, n)...)

		for ci, c := range columns {
			if indices[ci] < 0 {
				continue
			}
			arr := rec.Column(indices[ci])
			for i := 0; i < n; i++ {
				value, err := cellString(arr, i)
				if err != nil {
					return nil, fmt.Errorf("read %s: column %s: %w", path, c.name, err)
				}
				*c.get(&rows[start+i]) = value
			}
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// cellString renders a cell as text, older datasets carry typed columns for
// prices and the family flag.
func cellString(arr arrow.Array, i int) (sql.NullString, error) {
	if arr.IsNull(i) {
		return sql.NullString{}, nil
	}
	switch a := arr.(type) {
	case *array.String:
		return sql.NullString{String: a.Value(i), Valid: true}, nil
	case *array.LargeString:
		return sql.NullString{String: a.Value(i), Valid: true}, nil
	case *array.Float64:
		return sql.NullString{String: strconv.FormatFloat(a.Value(i), 'f', -1, 64), Valid: true}, nil
	case *array.Int64:
		return sql.NullString{String: strconv.FormatInt(a.Value(i), 10), Valid: true}, nil
	case *array.Boolean:
		if a.Value(i) {
			return sql.NullString{String: "TRUE", Valid: true}, nil
		}
		return sql.NullString{String: "FALSE", Valid: true}, nil
	}
	return sql.NullString{}, fmt.Errorf("unsupported type %s", arr.DataType())
}

// Write replaces the parquet file at `path` with `rows`. The data is written
// to a temporary file in the same directory first and renamed over `path`, so
// a failed write never leaves a truncated dataset behind.
func Write(path string, rows []Row) (err error) {
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".history-*.parquet")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	err = writeParquet(tmp, rows)
	closeErr := tmp.Close()
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		return fmt.Errorf("write %s: %w", path, closeErr)
	}
	return os.Rename(tmp.Name(), path)
}

func writeParquet(f *os.File, rows []Row) error {
	mem := memory.NewGoAllocator()
	sc := schema()

	builders := make([]*array.StringBuilder, len(columns))
	for i := range columns {
		builders[i] = array.NewStringBuilder(mem)
		defer builders[i].Release()
	}
	for ri := range rows {
		for ci, c := range columns {
			value := c.get(&rows[ri])
			if value.Valid {
				builders[ci].Append(value.String)
			} else {
				builders[ci].AppendNull()
			}
		}
	}

	arrays := make([]arrow.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.NewArray()
		defer arrays[i].Release()
	}
	record := array.NewRecord(sc, arrays, int64(len(rows)))
	defer record.Release()

	writer, err := pqarrow.NewFileWriter(
		sc, f,
		parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy)),
		pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()),
	)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	err = writer.Write(record)
	if err != nil {
		writer.Close()
		return fmt.Errorf("write record: %w", err)
	}
	return writer.Close()
}
