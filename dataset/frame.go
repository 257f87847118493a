package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Frame is an ordered tabular dataset: a header of named columns and rows
// of string cells, mirroring the on-disk CSV layout. Row order is
// significant — deduplication keeps the last occurrence.
type Frame struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// NewFrame creates an empty frame with the given column header.
func NewFrame(cols []string) *Frame {
	f := &Frame{
		cols:  append([]string(nil), cols...),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range f.cols {
		f.index[c] = i
	}
	return f
}

// Columns returns the column header in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.cols...)
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// AppendRow adds one row; it must have exactly one cell per column.
func (f *Frame) AppendRow(row []string) error {
	if len(row) != len(f.cols) {
		return fmt.Errorf("dataset: row has %d cells, frame has %d columns", len(row), len(f.cols))
	}
	f.rows = append(f.rows, append([]string(nil), row...))
	return nil
}

// Value returns the cell at the given row for the named column.
func (f *Frame) Value(row int, col string) (string, bool) {
	i, ok := f.index[col]
	if !ok || row < 0 || row >= len(f.rows) {
		return "", false
	}
	return f.rows[row][i], true
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := NewFrame(f.cols)
	for _, r := range f.rows {
		c.rows = append(c.rows, append([]string(nil), r...))
	}
	return c
}

// DropColumns returns a new frame without the named columns. Names that do
// not exist are ignored.
func (f *Frame) DropColumns(names ...string) *Frame {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	var kept []string
	var keptIdx []int
	for i, c := range f.cols {
		if _, gone := drop[c]; !gone {
			kept = append(kept, c)
			keptIdx = append(keptIdx, i)
		}
	}

	out := NewFrame(kept)
	for _, r := range f.rows {
		row := make([]string, len(keptIdx))
		for j, i := range keptIdx {
			row[j] = r[i]
		}
		out.rows = append(out.rows, row)
	}
	return out
}

// Concat returns a new frame with f's rows followed by other's rows,
// projected onto f's column schema. Columns missing from other are filled
// with empty cells; columns of other unknown to f are ignored.
func (f *Frame) Concat(other *Frame) *Frame {
	out := f.Clone()
	mapping := make([]int, len(f.cols))
	for i, c := range f.cols {
		if j, ok := other.index[c]; ok {
			mapping[i] = j
		} else {
			mapping[i] = -1
		}
	}
	for _, r := range other.rows {
		row := make([]string, len(f.cols))
		for i, j := range mapping {
			if j >= 0 {
				row[i] = r[j]
			}
		}
		out.rows = append(out.rows, row)
	}
	return out
}

// DedupLastByColumn returns a new frame where rows sharing a value in the
// named column are collapsed to the last occurrence, preserving the order
// in which each key was first seen.
func (f *Frame) DedupLastByColumn(name string) (*Frame, error) {
	ci, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("dataset: dedup column %q not present", name)
	}

	last := make(map[string]int, len(f.rows))
	var order []string
	for i, r := range f.rows {
		key := r[ci]
		if _, seen := last[key]; !seen {
			order = append(order, key)
		}
		last[key] = i
	}

	out := NewFrame(f.cols)
	for _, key := range order {
		r := f.rows[last[key]]
		out.rows = append(out.rows, append([]string(nil), r...))
	}
	return out, nil
}

// Floats extracts the named column as float64 values, skipping cells that
// are empty or not numeric. The second result is the count of skipped cells.
func (f *Frame) Floats(name string) ([]float64, int) {
	ci, ok := f.index[name]
	if !ok {
		return nil, 0
	}
	var out []float64
	skipped := 0
	for _, r := range f.rows {
		v, err := strconv.ParseFloat(r[ci], 64)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}

// Strings extracts the named column as raw string values.
func (f *Frame) Strings(name string) []string {
	ci, ok := f.index[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r[ci])
	}
	return out
}

// MissingCells counts empty cells across the whole frame.
func (f *Frame) MissingCells() int {
	n := 0
	for _, r := range f.rows {
		for _, c := range r {
			if c == "" {
				n++
			}
		}
	}
	return n
}

// Head returns a new frame containing at most n leading rows.
func (f *Frame) Head(n int) *Frame {
	out := NewFrame(f.cols)
	for i, r := range f.rows {
		if i >= n {
			break
		}
		out.rows = append(out.rows, append([]string(nil), r...))
	}
	return out
}

// ReadCSV parses a frame from CSV; the first record is the header.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("dataset: csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: read csv header: %w", err)
	}

	f := NewFrame(header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read csv row: %w", err)
		}
		f.rows = append(f.rows, rec)
	}
	return f, nil
}

// WriteCSV serializes the frame as CSV, header first.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.cols); err != nil {
		return fmt.Errorf("dataset: write csv header: %w", err)
	}
	for _, r := range f.rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("dataset: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
