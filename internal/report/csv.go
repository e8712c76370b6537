package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/pable/squawka-xg/internal/model"
)

// ErrRowMismatch is returned when a row's columns differ from the header.
var ErrRowMismatch = errors.New("row does not match header")

// CSVWriter writes xG rows against a fixed header. The header line is written
// before the first row; every row must carry exactly the header's keys.
type CSVWriter struct {
	w      *csv.Writer
	header []string
	wrote  bool
	rows   int
}

// NewCSVWriter returns a writer emitting header-ordered columns to w.
func NewCSVWriter(w io.Writer, header []string) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), header: header}
}

// CheckRow reports whether row carries exactly the keys of header.
func CheckRow(header []string, row model.Row) error {
	if len(row) != len(header) {
		return fmt.Errorf("%w: %d columns, want %d", ErrRowMismatch, len(row), len(header))
	}
	for _, k := range header {
		if _, ok := row[k]; !ok {
			return fmt.Errorf("%w: missing %q", ErrRowMismatch, k)
		}
	}
	return nil
}

// Write validates row against the header and appends it.
func (c *CSVWriter) Write(row model.Row) error {
	if err := CheckRow(c.header, row); err != nil {
		return err
	}
	rec := make([]string, len(c.header))
	for i, k := range c.header {
		rec[i] = row[k]
	}

	if !c.wrote {
		if err := c.w.Write(c.header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		c.wrote = true
	}
	if err := c.w.Write(rec); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	c.rows++
	return nil
}

// Rows returns the number of data rows written.
func (c *CSVWriter) Rows() int { return c.rows }

// Flush flushes buffered output and reports any write error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// WriteXGCSV writes rows under header in one call.
func WriteXGCSV(w io.Writer, header []string, rows []model.Row) error {
	cw := NewCSVWriter(w, header)
	for i, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return cw.Flush()
}
