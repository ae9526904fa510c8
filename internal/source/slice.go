package source

import "io"

// SliceReader serves records from memory through the BatchReader contract.
type SliceReader[T any] struct {
	rows []T
	pos  int
}

// FromSlice returns a reader over rows.
func FromSlice[T any](rows []T) *SliceReader[T] {
	return &SliceReader[T]{rows: rows}
}

// Read copies up to len(dst) records and returns io.EOF once the slice is
// exhausted.
func (s *SliceReader[T]) Read(dst []T) (int, error) {
	n := copy(dst, s.rows[s.pos:])
	s.pos += n
	if s.pos >= len(s.rows) {
		return n, io.EOF
	}
	return n, nil
}
