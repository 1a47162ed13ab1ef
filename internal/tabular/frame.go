// Package tabular implements the small in-memory table the pipelines pass
// around: named columns, string cells, stable row order. Row order is the
// implicit join key between predictions and references.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Frame is an ordered-column table of string cells. A missing value is
// represented by an empty cell.
type Frame struct {
	cols []string
	rows [][]string
}

// New creates an empty frame with the given column names.
func New(cols ...string) *Frame {
	return &Frame{cols: append([]string(nil), cols...)}
}

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.cols...)
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int { return len(f.rows) }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.cols) }

// HasColumn reports whether a column with the given name exists.
func (f *Frame) HasColumn(name string) bool { return f.colIndex(name) >= 0 }

func (f *Frame) colIndex(name string) int {
	for i, c := range f.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Append adds one row. The cell count must match the column count.
func (f *Frame) Append(cells ...string) error {
	if len(cells) != len(f.cols) {
		return fmt.Errorf("row has %d cells, frame has %d columns", len(cells), len(f.cols))
	}
	f.rows = append(f.rows, append([]string(nil), cells...))
	return nil
}

// Row returns a copy of row i. Out-of-range indices panic like slice access.
func (f *Frame) Row(i int) []string {
	return append([]string(nil), f.rows[i]...)
}

// Cell returns the value at row i, column name.
func (f *Frame) Cell(i int, name string) (string, error) {
	j := f.colIndex(name)
	if j < 0 {
		return "", fmt.Errorf("unknown column %q", name)
	}
	return f.rows[i][j], nil
}

// Col returns a copy of the named column, in row order.
func (f *Frame) Col(name string) ([]string, error) {
	j := f.colIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]string, len(f.rows))
	for i, r := range f.rows {
		out[i] = r[j]
	}
	return out, nil
}

// Drop returns a new frame without the named columns. Unknown names are
// ignored, matching the tolerant behavior of the import path where optional
// columns may be absent.
func (f *Frame) Drop(names ...string) *Frame {
	dropped := make(map[string]bool, len(names))
	for _, n := range names {
		dropped[n] = true
	}
	var keep []int
	out := &Frame{}
	for j, c := range f.cols {
		if !dropped[c] {
			keep = append(keep, j)
			out.cols = append(out.cols, c)
		}
	}
	for _, r := range f.rows {
		row := make([]string, len(keep))
		for i, j := range keep {
			row[i] = r[j]
		}
		out.rows = append(out.rows, row)
	}
	return out
}

// Rename returns a new frame with column old renamed to new.
func (f *Frame) Rename(old, new string) (*Frame, error) {
	j := f.colIndex(old)
	if j < 0 {
		return nil, fmt.Errorf("unknown column %q", old)
	}
	out := f.clone()
	out.cols[j] = new
	return out, nil
}

// DropMissing returns a new frame without rows that have any empty cell.
func (f *Frame) DropMissing() *Frame {
	out := &Frame{cols: append([]string(nil), f.cols...)}
	for _, r := range f.rows {
		if rowHasMissing(r) {
			continue
		}
		out.rows = append(out.rows, append([]string(nil), r...))
	}
	return out
}

// DropDuplicates returns a new frame keeping only the first occurrence of
// each fully identical row.
func (f *Frame) DropDuplicates() *Frame {
	out := &Frame{cols: append([]string(nil), f.cols...)}
	seen := make(map[string]bool, len(f.rows))
	for _, r := range f.rows {
		k := rowKey(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out.rows = append(out.rows, append([]string(nil), r...))
	}
	return out
}

// Duplicates counts rows that are full duplicates of an earlier row.
func (f *Frame) Duplicates() int {
	seen := make(map[string]bool, len(f.rows))
	n := 0
	for _, r := range f.rows {
		k := rowKey(r)
		if seen[k] {
			n++
			continue
		}
		seen[k] = true
	}
	return n
}

// MissingRows counts rows with at least one empty cell.
func (f *Frame) MissingRows() int {
	n := 0
	for _, r := range f.rows {
		if rowHasMissing(r) {
			n++
		}
	}
	return n
}

// MapColumn returns a new frame with fn applied to every cell of the named
// column.
func (f *Frame) MapColumn(name string, fn func(string) string) (*Frame, error) {
	j := f.colIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := f.clone()
	for _, r := range out.rows {
		r[j] = fn(r[j])
	}
	return out, nil
}

// Filter returns a new frame with only the rows for which keep returns true.
func (f *Frame) Filter(keep func(row []string) bool) *Frame {
	out := &Frame{cols: append([]string(nil), f.cols...)}
	for _, r := range f.rows {
		if keep(r) {
			out.rows = append(out.rows, append([]string(nil), r...))
		}
	}
	return out
}

// Head returns a new frame with at most n leading rows.
func (f *Frame) Head(n int) *Frame {
	if n > len(f.rows) {
		n = len(f.rows)
	}
	out := &Frame{cols: append([]string(nil), f.cols...)}
	for _, r := range f.rows[:n] {
		out.rows = append(out.rows, append([]string(nil), r...))
	}
	return out
}

func (f *Frame) clone() *Frame {
	out := &Frame{cols: append([]string(nil), f.cols...)}
	for _, r := range f.rows {
		out.rows = append(out.rows, append([]string(nil), r...))
	}
	return out
}

func rowHasMissing(r []string) bool {
	for _, c := range r {
		if c == "" {
			return true
		}
	}
	return false
}

func rowKey(r []string) string {
	// \x1f never appears in dataset text, so joining is collision free.
	return strings.Join(r, "\x1f")
}

// WriteCSV writes the frame with a header row.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.cols); err != nil {
		return err
	}
	for _, r := range f.rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a frame written by WriteCSV: first record is the header.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}
	f := New(recs[0]...)
	for _, rec := range recs[1:] {
		if err := f.Append(rec...); err != nil {
			return nil, err
		}
	}
	return f, nil
}
