package domain

import "math"

// Plausible heat index band in °C. Model output outside it is treated as
// noise and pinned to the nearest bound rather than reported.
const (
	MinHeatIndex = 27.0
	MaxHeatIndex = 55.0
)

// ClampForecast pins a raw model output into [MinHeatIndex, MaxHeatIndex]
// and rounds to 2 decimal places.
func ClampForecast(v float64) float64 {
	if v < MinHeatIndex {
		v = MinHeatIndex
	}
	if v > MaxHeatIndex {
		v = MaxHeatIndex
	}
	return round2(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Forecast is one station's entry in the primary output payload. StationID
// is 1-based here; the conversion from the 0-based internal identifier
// happens when the entry is created, at the payload boundary.
type Forecast struct {
	StationID        int     `json:"station_id"`
	Tomorrow         float64 `json:"tomorrow"`
	DayAfterTomorrow float64 `json:"day_after_tomorrow"`
}

// ErrorRecord compares a forecast against recorded ground truth. A nil
// error means no actual value existed for that horizon yet, the expected
// case when forecasting into the future, and serializes as JSON null.
type ErrorRecord struct {
	StationID  int      `json:"station_id"`
	AbsError1D *float64 `json:"abs_error_1d"`
	AbsError2D *float64 `json:"abs_error_2d"`
}

// AbsError returns |forecast − actual| when actual is present, else nil.
func AbsError(forecast float64, actual *float64) *float64 {
	if actual == nil {
		return nil
	}
	e := math.Abs(forecast - *actual)
	return &e
}
