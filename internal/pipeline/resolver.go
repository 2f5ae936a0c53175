package pipeline

import (
	"math"
	"time"

	"github.com/heatwatch/hi-forecast/internal/domain"
)

// Window bounds which historical rows are eligible for selection. It gates
// row selection only; the requested forecast date may lie outside it.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the inclusive window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// RowSelectionStrategy picks the single representative row for a station
// from the invocation's candidate pool. Bounds reports the observation
// window it selects within; the candidate fetch uses it as the query range.
type RowSelectionStrategy interface {
	SelectRow(station domain.StationRecord, candidates []domain.Row) (domain.Row, error)
	Bounds() Window
}

// CoordinateStrategy restricts candidates to the observation window, then to
// rows within Tolerance degrees of the station's registered coordinates on
// both axes, and picks the chronologically latest. An empty coordinate match
// falls back to the latest in-window row; that is the closest-available
// policy, not an error. Only an empty window fails.
//
// A station whose registered coordinates are (0, 0) is treated as having no
// known coordinates and goes straight to the latest-row fallback.
type CoordinateStrategy struct {
	Window    Window
	Tolerance float64
}

func (s CoordinateStrategy) Bounds() Window { return s.Window }

func (s CoordinateStrategy) SelectRow(station domain.StationRecord, candidates []domain.Row) (domain.Row, error) {
	inWindow := filterWindow(candidates, s.Window)
	if len(inWindow) == 0 {
		return domain.Row{}, &domain.DataNotFoundError{StationID: station.ID}
	}

	if station.Latitude != 0 || station.Longitude != 0 {
		var matched []domain.Row
		for _, row := range inWindow {
			if math.Abs(row.Latitude()-station.Latitude) < s.Tolerance &&
				math.Abs(row.Longitude()-station.Longitude) < s.Tolerance {
				matched = append(matched, row)
			}
		}
		if len(matched) > 0 {
			return latestRow(matched), nil
		}
	}
	return latestRow(inWindow), nil
}

// LatestStrategy ignores coordinates and picks the latest in-window row.
type LatestStrategy struct {
	Window Window
}

func (s LatestStrategy) Bounds() Window { return s.Window }

func (s LatestStrategy) SelectRow(station domain.StationRecord, candidates []domain.Row) (domain.Row, error) {
	inWindow := filterWindow(candidates, s.Window)
	if len(inWindow) == 0 {
		return domain.Row{}, &domain.DataNotFoundError{StationID: station.ID}
	}
	return latestRow(inWindow), nil
}

func filterWindow(rows []domain.Row, w Window) []domain.Row {
	var out []domain.Row
	for _, row := range rows {
		if w.Contains(row.Date) {
			out = append(out, row)
		}
	}
	return out
}

// latestRow returns the last row carrying the maximum date, so ties within
// one date resolve to the later row in source order.
func latestRow(rows []domain.Row) domain.Row {
	best := rows[0]
	for _, row := range rows[1:] {
		if !row.Date.Before(best.Date) {
			best = row
		}
	}
	return best
}
