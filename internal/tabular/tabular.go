// Package tabular reads and writes the delimited, header-first tables that
// flow between preprocessing, the record transforms, and the reports.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Common delimiters.
const (
	Comma rune = ','
	Tab   rune = '\t'
)

// ErrNoHeader is returned when a table has no header row.
var ErrNoHeader = errors.New("tabular: missing header row")

// Row maps a column name to its text value. Absent and NULL cells read as "".
type Row map[string]string

// Get returns the value stored under column, or "" when absent.
func (r Row) Get(column string) string { return r[column] }

// Has reports whether column carries a non-empty value.
func (r Row) Has(column string) bool { return r[column] != "" }

// Table is a named, fully materialized relation. Null cells are stored as "".
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Row returns data row i keyed by column name.
func (t *Table) Row(i int) Row {
	out := make(Row, len(t.Columns))
	for j, col := range t.Columns {
		if j < len(t.Rows[i]) {
			out[col] = t.Rows[i][j]
		}
	}
	return out
}

// DetectDelimiter picks tab or comma by counting occurrences in the header line.
func DetectDelimiter(header string) rune {
	if strings.Count(header, "\t") > strings.Count(header, ",") {
		return Tab
	}
	return Comma
}

// SniffDelimiter peeks the first line of data and returns the detected delimiter.
func SniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	return DetectDelimiter(string(line))
}

// Reader iterates over rows of a header-first delimited stream.
type Reader struct {
	csv    *csv.Reader
	header []string
	line   int
}

// NewReader reads the header row and returns a Reader positioned at the first
// data row. A zero delimiter selects Comma.
func NewReader(r io.Reader, delimiter rune) (*Reader, error) {
	if delimiter == 0 {
		delimiter = Comma
	}
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return &Reader{csv: cr, header: header, line: 1}, nil
}

// Header returns the column names in file order.
func (r *Reader) Header() []string { return r.header }

// Line returns the 1-based line number of the most recently read record.
func (r *Reader) Line() int { return r.line }

// Record returns the next raw record padded to the header width. It returns
// io.EOF after the last record and an error when a record is wider than the header.
func (r *Reader) Record() ([]string, error) {
	rec, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	r.line++
	if len(rec) > len(r.header) {
		return nil, fmt.Errorf("line %d: %d fields, header has %d", r.line, len(rec), len(r.header))
	}
	for len(rec) < len(r.header) {
		rec = append(rec, "")
	}
	return rec, nil
}

// Next returns the next record as a Row.
func (r *Reader) Next() (Row, error) {
	rec, err := r.Record()
	if err != nil {
		return nil, err
	}
	row := make(Row, len(r.header))
	for i, col := range r.header {
		row[col] = rec[i]
	}
	return row, nil
}

// ReadTable consumes the stream into a Table.
func ReadTable(name string, r io.Reader, delimiter rune) (*Table, error) {
	rd, err := NewReader(r, delimiter)
	if err != nil {
		return nil, err
	}
	t := &Table{Name: name, Columns: rd.Header()}
	for {
		rec, err := rd.Record()
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, rec)
	}
}

// Write renders the table with a header row using the given delimiter.
func Write(w io.Writer, t *Table, delimiter rune) error {
	if delimiter == 0 {
		delimiter = Comma
	}
	writer := csv.NewWriter(w)
	writer.Comma = delimiter
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Encode renders the table into a byte slice.
func Encode(t *Table, delimiter rune) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Write(buf, t, delimiter); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
