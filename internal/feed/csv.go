// Package feed fetches spreadsheet CSV exports and turns their rows into GeoJSON layers.
package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"slices"
	"strings"
)

const bom = "\ufeff"

// Row is one CSV record keyed by the header line.
// Columns keeps the header order and is shared by every row of a feed.
type Row struct {
	Fields  map[string]string
	Columns []string
	Line    int
}

// Get returns the first non-empty value among the given columns.
// Column names are matched case-insensitively, so "Lat" and "lat" are the same column.
// An exact match wins, otherwise the leftmost matching header does.
func (r Row) Get(columns ...string) string {
	order := r.Columns
	if order == nil {
		order = slices.Sorted(maps.Keys(r.Fields))
	}

	for _, col := range columns {
		if v, ok := r.Fields[col]; ok && v != "" {
			return v
		}
		for _, key := range order {
			if v := r.Fields[key]; v != "" && strings.EqualFold(key, col) {
				return v
			}
		}
	}

	return ""
}

// RowError reports a row that could not be converted.
type RowError struct {
	Err  error
	Line int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Fetch downloads an http(s) source or opens a local file and parses it as CSV.
func Fetch(ctx context.Context, client *http.Client, source string) ([]Row, error) {
	rc, err := open(ctx, client, source)
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = rc.Close() }()

	return Parse(rc)
}

func open(ctx context.Context, client *http.Client, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.Open(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// Parse reads CSV with a header line into rows.
// Records may be shorter or longer than the header: missing columns are absent
// from the row, extra values are dropped. Records with only empty values are skipped.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	header[0] = strings.TrimPrefix(header[0], bom)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	columns := slices.DeleteFunc(slices.Clone(header), func(h string) bool { return h == "" })

	rows := make([]Row, 0, 64)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(record) {
			continue
		}

		line, _ := cr.FieldPos(0)
		row := Row{Line: line, Columns: columns, Fields: make(map[string]string, len(header))}
		for i, value := range record {
			if i >= len(header) {
				break
			}
			if header[i] == "" {
				continue
			}
			row.Fields[header[i]] = value
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}
