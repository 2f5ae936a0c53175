// Package dataset is the flat-file observation backend. It loads the
// derived-feature CSV once per invocation into an in-memory frame and serves
// date filters against it; the frame is read-only after load.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/heatwatch/hi-forecast/internal/domain"
)

const dateLayout = "2006-01-02"

// Frame holds the full dataset, rows sorted by date ascending. Rows within
// one date keep file order, so filters are deterministic.
type Frame struct {
	rows []domain.Row
}

// LoadCSV reads the dataset file and canonicalizes its header before any row
// is constructed; downstream code never sees the file's own casing. Cells
// that do not parse as numbers are left absent from the row rather than
// recorded as zero, so feature building can tell "missing" from 0.0.
func LoadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	frame, err := read(csv.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return frame, nil
}

func read(r *csv.Reader) (*Frame, error) {
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	canonical := make([]string, len(header))
	dateIdx := -1
	for i, raw := range header {
		name, ok := domain.Canonicalize(raw)
		if !ok {
			continue
		}
		canonical[i] = name
		if name == domain.ColDate {
			dateIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("dataset has no recognizable %s column", domain.ColDate)
	}

	var rows []domain.Row
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseDate(record[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		values := make(map[string]float64, len(canonical))
		for i, cell := range record {
			if i == dateIdx || canonical[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				continue
			}
			values[canonical[i]] = v
		}
		rows = append(rows, domain.Row{Date: date, Values: values})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return &Frame{rows: rows}, nil
}

func parseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if t, err := time.Parse(dateLayout, cell); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, cell)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q", cell)
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}

// Len reports the number of rows in the frame.
func (f *Frame) Len() int { return len(f.rows) }

// Rows returns every row in date order. Callers must not mutate the slice.
func (f *Frame) Rows() []domain.Row { return f.rows }

// RowsForDate returns the rows observed on exactly the given date.
func (f *Frame) RowsForDate(date time.Time) []domain.Row {
	var out []domain.Row
	for _, row := range f.rows {
		if sameDay(row.Date, date) {
			out = append(out, row)
		}
	}
	return out
}

// RowsInRange returns the rows with from <= date <= to, in date order.
func (f *Frame) RowsInRange(from, to time.Time) []domain.Row {
	var out []domain.Row
	for _, row := range f.rows {
		if row.Date.Before(from) || row.Date.After(to) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Stations derives the station reference set from the frame: one record per
// distinct Station value, carrying the coordinates of its latest row,
// ascending by identifier. Used when no relational store is configured.
func (f *Frame) Stations() []domain.StationRecord {
	byID := make(map[int]domain.StationRecord)
	for _, row := range f.rows {
		id, ok := row.Value(domain.ColStation)
		if !ok {
			continue
		}
		byID[int(id)] = domain.StationRecord{
			ID:        int(id),
			Latitude:  row.Latitude(),
			Longitude: row.Longitude(),
			Elevation: row.ValueOrZero(domain.ColElevation),
		}
	}

	out := make([]domain.StationRecord, 0, len(byID))
	for _, st := range byID {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
