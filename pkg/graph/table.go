package graph

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/pkg/errors"
)

// Delimiter separates fields in LDBC and transformed files
const Delimiter = '|'

// Table is a header plus string rows read from a delimited file
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable reads a pipe-delimited file with a header row. Repeated header
// names are disambiguated as name, name.1, name.2 and so on.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	t, err := readTable(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return t, nil
}

// ReadTables reads and concatenates shards that share one header
func ReadTables(paths ...string) (*Table, error) {
	if len(paths) == 0 {
		return nil, errors.New("no input files")
	}

	var merged *Table
	for _, path := range paths {
		t, err := ReadTable(path)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = t
			continue
		}
		if !slices.Equal(merged.Header, t.Header) {
			return nil, errors.Errorf("shard %s header %v differs from %v", path, t.Header, merged.Header)
		}
		merged.Rows = append(merged.Rows, t.Rows...)
	}
	return merged, nil
}

func readTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comma = Delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}

	t := &Table{Header: dedupeHeader(header)}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) > len(t.Header) {
			line, _ := cr.FieldPos(0)
			return nil, errors.Errorf("line %d: %d fields, header has %d", line, len(record), len(t.Header))
		}
		for len(record) < len(t.Header) {
			record = append(record, "")
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

func dedupeHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, name := range header {
		n := seen[name]
		seen[name] = n + 1
		if n == 0 {
			out[i] = name
			continue
		}
		candidate := name + "." + strconv.Itoa(n)
		for slices.Contains(header, candidate) {
			n++
			candidate = name + "." + strconv.Itoa(n)
		}
		seen[name] = n + 1
		out[i] = candidate
	}
	return out
}

// ColumnIndex returns the position of a column or -1
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Header, name)
}

// HasColumn reports whether the table has the named column
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// DropEmptyRows removes rows whose fields are all empty
func (t *Table) DropEmptyRows() {
	t.Rows = slices.DeleteFunc(t.Rows, func(row []string) bool {
		for _, v := range row {
			if v != "" {
				return false
			}
		}
		return true
	})
}

// InsertColumn inserts a column filled with value at position pos
func (t *Table) InsertColumn(pos int, name, value string) error {
	if t.HasColumn(name) {
		return errors.Errorf("column %q already exists", name)
	}
	if pos > len(t.Header) {
		pos = len(t.Header)
	}
	t.Header = slices.Insert(t.Header, pos, name)
	for i, row := range t.Rows {
		t.Rows[i] = slices.Insert(row, pos, value)
	}
	return nil
}

// RenameColumn renames a column if present
func (t *Table) RenameColumn(from, to string) bool {
	i := t.ColumnIndex(from)
	if i < 0 {
		return false
	}
	t.Header[i] = to
	return true
}

// MapColumn rewrites every value of a column, stopping at the first error
func (t *Table) MapColumn(name string, fn func(string) (string, error)) error {
	i := t.ColumnIndex(name)
	if i < 0 {
		return errors.Wrapf(ErrMissingColumn, "%q", name)
	}
	for r, row := range t.Rows {
		v, err := fn(row[i])
		if err != nil {
			return errors.Wrapf(err, "row %d", r+1)
		}
		row[i] = v
	}
	return nil
}

// Column returns the values of a column
func (t *Table) Column(name string) ([]string, error) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil, errors.Wrapf(ErrMissingColumn, "%q", name)
	}
	values := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		values[r] = row[i]
	}
	return values, nil
}

// Select returns a new table holding only the named columns, in that order
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = t.ColumnIndex(name)
		if idx[i] < 0 {
			return nil, errors.Wrapf(ErrMissingColumn, "%q", name)
		}
	}

	out := &Table{Header: slices.Clone(names), Rows: make([][]string, len(t.Rows))}
	for r, row := range t.Rows {
		selected := make([]string, len(idx))
		for i, c := range idx {
			selected[i] = row[c]
		}
		out.Rows[r] = selected
	}
	return out, nil
}

// LeftJoin joins right onto t by the key column. Non-key columns present in
// both tables get _x (left) and _y (right) suffixes. Left row order is kept;
// a left row with several matches repeats once per match in right order and
// a left row without a match gets empty right fields.
func (t *Table) LeftJoin(right *Table, key string) (*Table, error) {
	lk := t.ColumnIndex(key)
	if lk < 0 {
		return nil, errors.Wrapf(ErrMissingColumn, "left join key %q", key)
	}
	rk := right.ColumnIndex(key)
	if rk < 0 {
		return nil, errors.Wrapf(ErrMissingColumn, "right join key %q", key)
	}

	header := make([]string, 0, len(t.Header)+len(right.Header)-1)
	for i, name := range t.Header {
		if i != lk && right.HasColumn(name) {
			name += "_x"
		}
		header = append(header, name)
	}
	rightCols := make([]int, 0, len(right.Header)-1)
	for i, name := range right.Header {
		if i == rk {
			continue
		}
		if t.HasColumn(name) {
			name += "_y"
		}
		header = append(header, name)
		rightCols = append(rightCols, i)
	}

	index := make(map[string][]int, len(right.Rows))
	for i, row := range right.Rows {
		index[row[rk]] = append(index[row[rk]], i)
	}

	out := &Table{Header: header, Rows: make([][]string, 0, len(t.Rows))}
	for _, row := range t.Rows {
		matches := index[row[lk]]
		if len(matches) == 0 {
			joined := make([]string, len(header))
			copy(joined, row)
			out.Rows = append(out.Rows, joined)
			continue
		}
		for _, m := range matches {
			joined := make([]string, 0, len(header))
			joined = append(joined, row...)
			for _, c := range rightCols {
				joined = append(joined, right.Rows[m][c])
			}
			out.Rows = append(out.Rows, joined)
		}
	}
	return out, nil
}

// WriteFile writes the table with its header as a pipe-delimited file
func (t *Table) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}

	if err := t.write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

func (t *Table) write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	cw.Comma = Delimiter

	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return bw.Flush()
}
