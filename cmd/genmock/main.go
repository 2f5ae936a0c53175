// Command genmock generates a deterministic synthetic observation dataset in
// the flat-file CSV layout. It uses the actual domain package to verify that
// every generated row yields a complete model input vector, so fixtures built
// with it match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/df_test_final.csv \
//	  -stations 5 -start 2023-03-01 -end 2023-05-31 -seed 1
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/heatwatch/hi-forecast/internal/domain"
)

const dateLayout = "2006-01-02"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/df_test_final.csv", "output CSV path")
	stations := flag.Int("stations", 5, "number of stations")
	startArg := flag.String("start", "2023-03-01", "first observation date YYYY-MM-DD")
	endArg := flag.String("end", "2023-05-31", "last observation date YYYY-MM-DD")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	start, err := time.Parse(dateLayout, *startArg)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	end, err := time.Parse(dateLayout, *endArg)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("-end precedes -start")
	}
	if *stations < 1 {
		return fmt.Errorf("-stations must be at least 1")
	}

	rows := generate(*stations, start, end, *seed)

	// Every row must produce a complete 67-feature vector under strict
	// alignment, exactly as the pipeline builds it.
	for i, row := range rows {
		id := int(row.values[domain.ColStation])
		if _, _, err := domain.BuildFeatures(row.toDomain(), id, nil, true); err != nil {
			return fmt.Errorf("row %d fails feature alignment: %w", i, err)
		}
	}

	if err := writeCSV(*out, rows); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	log.Printf("wrote %d rows for %d stations: %s", len(rows), *stations, *out)

	printStats(rows, *stations)
	return nil
}

// mockRow is one generated observation: a date plus every canonical column.
type mockRow struct {
	date   time.Time
	values map[string]float64
}

func (r mockRow) toDomain() domain.Row {
	return domain.Row{Date: r.date, Values: r.values}
}

// history holds per-station state for lag and rolling-window columns.
type history struct {
	tmax  []float64
	tmin  []float64
	rh    []float64
	maxHI []float64
	tAtRH []float64
}

func generate(stations int, start, end time.Time, seed int64) []mockRow {
	var rows []mockRow
	for id := 0; id < stations; id++ {
		rng := rand.New(rand.NewSource(seed + int64(id)))

		lat := 14.2 + 0.35*float64(id)
		lon := 120.8 + 0.28*float64(id)
		elev := 10 + 45*float64(id)
		h := &history{}

		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			rows = append(rows, synthesize(d, id, lat, lon, elev, rng, h))
		}
	}
	return rows
}

// synthesize produces one day's observation and appends it to the station
// history. Values follow a mild seasonal cycle plus noise so rolling and lag
// columns vary realistically.
func synthesize(d time.Time, id int, lat, lon, elev float64, rng *rand.Rand, h *history) mockRow {
	doy := float64(d.YearDay())
	seasonal := math.Sin(2 * math.Pi * (doy - 80) / 365)

	tmax := 31.5 + 3.5*seasonal + rng.NormFloat64()*1.2
	tmin := tmax - 7 - rng.Float64()*3
	rh := clampRange(62+14*rng.NormFloat64()*0.5-6*seasonal, 35, 95)
	wind := 1.5 + rng.Float64()*6
	dir := rng.Float64() * 2 * math.Pi

	tAtRH := tmax - 0.04*(rh-60) + rng.NormFloat64()*0.4
	maxHI := clampRange(tmax+0.09*(rh-40)+rng.NormFloat64()*0.6, 27, 55)

	h.tmax = append(h.tmax, tmax)
	h.tmin = append(h.tmin, tmin)
	h.rh = append(h.rh, rh)
	h.maxHI = append(h.maxHI, maxHI)
	h.tAtRH = append(h.tAtRH, tAtRH)

	month := int(d.Month())
	v := map[string]float64{
		domain.ColStation:   float64(id),
		domain.ColLatitude:  lat,
		domain.ColLongitude: lon,
		domain.ColElevation: elev,

		domain.ColTMax:      round2(tmax),
		domain.ColTMin:      round2(tmin),
		domain.ColRH:        round2(rh),
		domain.ColWindSpeed: round2(wind),

		"Albedo_linear":          round4(0.12 + 0.1*rng.Float64()),
		"skin_temperature_min_C": round2(tmin + 1 + rng.Float64()),
		"skin_temperature_max_C": round2(tmax + 2 + rng.Float64()*2),
		"NDBI_linear":            round4(-0.1 + 0.3*rng.Float64()),
		"NDVI_original":          round4(0.25 + 0.5*rng.Float64()),

		"Temperature_at_RH": round2(tAtRH),
		"Max_HI":            round2(maxHI),

		"is_dry_season":      boolFlag(month <= 4 || month >= 11),
		"is_wet_season":      boolFlag(month >= 5 && month <= 10),
		"is_cool_dry_season": boolFlag(month <= 2 || month >= 11),
		"is_hot_dry_season":  boolFlag(month >= 3 && month <= 5),

		"U_wind_component": round2(wind * math.Cos(dir)),
		"V_wind_component": round2(wind * math.Sin(dir)),
		"Temp_Range":       round2(tmax - tmin),
		"Temp_Mean":        round2((tmax + tmin) / 2),

		"Month_sin":       round4(math.Sin(2 * math.Pi * float64(month) / 12)),
		"Month_cos":       round4(math.Cos(2 * math.Pi * float64(month) / 12)),
		"Day_of_Year_sin": round4(math.Sin(2 * math.Pi * doy / 365)),
		"Day_of_Year_cos": round4(math.Cos(2 * math.Pi * doy / 365)),

		"TMAX_Rolling_Mean_7":   round2(rollMean(h.tmax, 7)),
		"TMAX_Rolling_Max_7":    round2(rollMax(h.tmax, 7)),
		"TMIN_Rolling_Mean_7":   round2(rollMean(h.tmin, 7)),
		"TMIN_Rolling_Max_7":    round2(rollMax(h.tmin, 7)),
		"Max_HI_Rolling_Mean_7": round2(rollMean(h.maxHI, 7)),
		"Max_HI_Rolling_Max_7":  round2(rollMax(h.maxHI, 7)),
		"Max_HI_Rolling_Min_7":  round2(rollMin(h.maxHI, 7)),
		"RH_Rolling_Mean_7":     round2(rollMean(h.rh, 7)),
		"RH_Rolling_Min_7":      round2(rollMin(h.rh, 7)),

		"TMAX_Rolling_Mean_30":   round2(rollMean(h.tmax, 30)),
		"TMAX_Rolling_Max_30":    round2(rollMax(h.tmax, 30)),
		"TMIN_Rolling_Mean_30":   round2(rollMean(h.tmin, 30)),
		"TMIN_Rolling_Max_30":    round2(rollMax(h.tmin, 30)),
		"Max_HI_Rolling_Mean_30": round2(rollMean(h.maxHI, 30)),
		"Max_HI_Rolling_Max_30":  round2(rollMax(h.maxHI, 30)),
		"Max_HI_Rolling_Min_30":  round2(rollMin(h.maxHI, 30)),
		"RH_Rolling_Mean_30":     round2(rollMean(h.rh, 30)),
		"RH_Rolling_Min_30":      round2(rollMin(h.rh, 30)),

		"Max_HI_lag_1": round2(lag(h.maxHI, 1)),
		"Max_HI_lag_2": round2(lag(h.maxHI, 2)),
		"RH_lag_1":     round2(lag(h.rh, 1)),
		"RH_lag_5":     round2(lag(h.rh, 5)),
	}
	for _, k := range []int{1, 2, 3, 4, 5, 6, 8, 10, 11, 12, 13} {
		v[fmt.Sprintf("Temperature_at_RH_lag_%d", k)] = round2(lag(h.tAtRH, k))
	}

	// The interaction columns ship precomputed in the flat file even though
	// the pipeline recomputes them from the row.
	v[domain.ColTSq] = round2(tmax * tmax)
	v[domain.ColRHSq] = round2(rh * rh)
	v[domain.ColTxRH] = round2(tmax * rh)
	v[domain.ColTSqxRH] = round2(tmax * tmax * rh)
	v[domain.ColTxRHSq] = round2(tmax * rh * rh)
	v[domain.ColTSqxRHSq] = round2(tmax * tmax * rh * rh)
	v[domain.ColTMaxWind] = round2(tmax * wind)

	return mockRow{date: d, values: v}
}

// lag returns the value k observations back, falling back to the oldest
// available value in the warm-up days.
func lag(series []float64, k int) float64 {
	// the current day was already appended, so lag 1 is index len-2
	i := len(series) - 1 - k
	if i < 0 {
		i = 0
	}
	return series[i]
}

func window(series []float64, n int) []float64 {
	if len(series) > n {
		return series[len(series)-n:]
	}
	return series
}

func rollMean(series []float64, n int) float64 {
	w := window(series, n)
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum / float64(len(w))
}

func rollMax(series []float64, n int) float64 {
	w := window(series, n)
	best := w[0]
	for _, v := range w[1:] {
		best = math.Max(best, v)
	}
	return best
}

func rollMin(series []float64, n int) float64 {
	w := window(series, n)
	best := w[0]
	for _, v := range w[1:] {
		best = math.Min(best, v)
	}
	return best
}

func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clampRange(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

func writeCSV(path string, rows []mockRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{domain.ColDate}, domain.CanonicalFeatures...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, 0, len(header))
		record = append(record, row.date.Format(dateLayout))
		for _, name := range domain.CanonicalFeatures {
			record = append(record, strconv.FormatFloat(row.values[name], 'f', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func printStats(rows []mockRow, stations int) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total rows: %d\n", len(rows))

	for id := 0; id < stations; id++ {
		var count int
		minHI, maxHI := math.Inf(1), math.Inf(-1)
		for _, row := range rows {
			if int(row.values[domain.ColStation]) != id {
				continue
			}
			count++
			hi := row.values["Max_HI"]
			minHI = math.Min(minHI, hi)
			maxHI = math.Max(maxHI, hi)
		}
		fmt.Printf("Station %d: rows=%d, Max_HI range [%.2f, %.2f]\n", id, count, minHI, maxHI)
	}
}
