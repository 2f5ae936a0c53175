// Command validate performs integrity checks on an observation dataset CSV
// before it is served to the pipeline: header coverage against the canonical
// column schema, per-row parseability, station coordinate sanity, and strict
// feature alignment for every station's rows.
//
// Usage:
//
//	go run ./cmd/validate -data data/df_test_final.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/heatwatch/hi-forecast/internal/dataset"
	"github.com/heatwatch/hi-forecast/internal/domain"
)

const coordConsistencyTolerance = 0.001

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "", "path to the observation dataset CSV")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*dataPath))
}

func run(dataPath string) int {
	fmt.Println("=== Observation Dataset Integrity Validation ===")
	fmt.Println()

	header, records, err := loadRaw(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	frame, err := dataset.LoadCSV(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateHeader(header),
		validateRows(header, records),
		validateCoordinates(frame),
		validateAlignment(frame),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d rows, %d stations\n", frame.Len(), len(frame.Stations()))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// loadRaw reads the file without any canonicalization so header and cell
// problems surface before the frame parser papers over them.
func loadRaw(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no data rows in %s", path)
	}
	return header, records, nil
}

// Phase 1: every canonical feature must be resolvable from the header, and
// the header must carry a recognizable date column.
func validateHeader(header []string) *phase {
	p := &phase{name: "Phase 1: Header Coverage"}

	resolved := map[string]bool{}
	for _, raw := range header {
		name, ok := domain.Canonicalize(raw)
		if !ok {
			p.errorf("unrecognized column %q", raw)
			continue
		}
		if resolved[name] {
			p.errorf("column %q resolves to %q more than once", raw, name)
		}
		resolved[name] = true
	}

	if !resolved[domain.ColDate] {
		p.errorf("no recognizable %s column", domain.ColDate)
	}
	for _, name := range domain.CanonicalFeatures {
		if !resolved[name] {
			p.errorf("missing feature column %q", name)
		}
	}
	return p
}

// Phase 2: every cell must parse, every numeric value must be finite.
func validateRows(header []string, records [][]string) *phase {
	p := &phase{name: "Phase 2: Row Integrity"}

	for i, record := range records {
		line := i + 2
		if len(record) != len(header) {
			p.errorf("line %d: %d cells, header has %d", line, len(record), len(header))
			continue
		}
		for j, cell := range record {
			name, ok := domain.Canonicalize(header[j])
			if !ok || name == domain.ColDate {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				p.errorf("line %d: column %q: unparseable value %q", line, name, cell)
				continue
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("line %d: column %q: non-finite value %q", line, name, cell)
			}
			if name == domain.ColStation && (v < 0 || v != math.Trunc(v)) {
				p.errorf("line %d: station identifier %q is not a nonnegative integer", line, cell)
			}
		}
	}
	return p
}

// Phase 3: station coordinates must be plausible and consistent across that
// station's rows.
func validateCoordinates(frame *dataset.Frame) *phase {
	p := &phase{name: "Phase 3: Coordinate Sanity"}

	stations := frame.Stations()
	if len(stations) == 0 {
		p.errorf("no stations derivable from the dataset")
		return p
	}

	byID := map[int]domain.StationRecord{}
	for _, st := range stations {
		byID[st.ID] = st
		if st.Latitude < -90 || st.Latitude > 90 {
			p.errorf("station %d: latitude %g out of range", st.ID, st.Latitude)
		}
		if st.Longitude < -180 || st.Longitude > 180 {
			p.errorf("station %d: longitude %g out of range", st.ID, st.Longitude)
		}
		if st.Latitude == 0 && st.Longitude == 0 {
			p.errorf("station %d: coordinates are both zero", st.ID)
		}
	}

	for _, row := range frame.Rows() {
		id, ok := row.Value(domain.ColStation)
		if !ok {
			continue
		}
		st, known := byID[int(id)]
		if !known {
			continue
		}
		if math.Abs(row.Latitude()-st.Latitude) >= coordConsistencyTolerance ||
			math.Abs(row.Longitude()-st.Longitude) >= coordConsistencyTolerance {
			p.errorf("station %d: row %s drifts from registered coordinates (%g, %g) to (%g, %g)",
				st.ID, row.Date.Format("2006-01-02"),
				st.Latitude, st.Longitude, row.Latitude(), row.Longitude())
		}
	}
	return p
}

// Phase 4: every row must build a complete model input vector under strict
// alignment.
func validateAlignment(frame *dataset.Frame) *phase {
	p := &phase{name: "Phase 4: Feature Alignment"}

	for _, row := range frame.Rows() {
		id, ok := row.Value(domain.ColStation)
		if !ok {
			p.errorf("row %s: no station identifier", row.Date.Format("2006-01-02"))
			continue
		}
		if _, missing, err := domain.BuildFeatures(row, int(id), nil, true); err != nil {
			p.errorf("station %d row %s: missing features: %s",
				int(id), row.Date.Format("2006-01-02"), strings.Join(missing, ", "))
		}
	}
	return p
}
