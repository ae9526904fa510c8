package source

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// Reader wraps a parquet GenericReader for streaming typed records.
type Reader[T any] struct {
	path   string
	file   *os.File
	pf     *parquet.File
	reader *parquet.GenericReader[T]
}

// Open opens a Parquet file and returns a streaming Reader. When required
// columns are given, the file schema is checked before any rows are decoded.
func Open[T any](path string, required ...string) (*Reader[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}

	if len(required) > 0 {
		if err := ValidateSchema(pf.Schema(), required); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	r := parquet.NewGenericReader[T](pf)
	return &Reader[T]{path: path, file: f, pf: pf, reader: r}, nil
}

// Path returns the file the reader was opened on.
func (r *Reader[T]) Path() string {
	return r.path
}

// NumRows returns the total number of rows in the Parquet file.
func (r *Reader[T]) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records into the provided slice.
// Returns the number of rows read and io.EOF when done.
func (r *Reader[T]) Read(rows []T) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read parquet rows: %w", err)
	}
	return n, err
}

// Schema returns the schema stored in the file, which may differ from T's.
func (r *Reader[T]) Schema() *parquet.Schema {
	return r.pf.Schema()
}

// Close releases all resources.
func (r *Reader[T]) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// BatchReader is the streaming read contract shared by Parquet readers and
// in-memory slices.
type BatchReader[T any] interface {
	Read(rows []T) (int, error)
}

// ReadAll drains r in batches of batchSize and returns every record in file
// order. Each batch gets a fresh buffer since decoders reuse slice fields of
// the destination rows.
func ReadAll[T any](r BatchReader[T], batchSize int) ([]T, error) {
	if batchSize <= 0 {
		batchSize = 1024
	}
	var out []T
	for {
		buf := make([]T, batchSize)
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// LoadFile opens path, validates its schema against the required columns and
// reads every record.
func LoadFile[T any](path string, required []string) ([]T, error) {
	r, err := Open[T](path, required...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rows, err := ReadAll[T](r, 4096)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Path(), err)
	}
	return rows, nil
}
