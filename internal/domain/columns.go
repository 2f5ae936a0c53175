package domain

import "strings"

// Identifier and date columns that accompany the feature columns in every
// backend but are not part of the model input.
const (
	ColDate      = "Date"
	ColStation   = "Station"
	ColLatitude  = "Latitude"
	ColLongitude = "Longitude"
	ColElevation = "Elevation"
)

// Columns the interaction terms are derived from.
const (
	ColTMax      = "TMAX"
	ColTMin      = "TMIN"
	ColRH        = "RH"
	ColWindSpeed = "WIND_SPEED"
)

// Interaction-term feature names. These are computed by BuildFeatures from
// the resolved row, never read from a backend, but backends that happen to
// carry precomputed copies still canonicalize them.
const (
	ColTSq      = "T^2"
	ColRHSq     = "RH^2"
	ColTxRH     = "TxRH"
	ColTSqxRH   = "T^2xRH"
	ColTxRHSq   = "TxRH^2"
	ColTSqxRHSq = "T^2xRH^2"
	ColTMaxWind = "TMAX_x_WIND"
)

// CanonicalFeatures is the exact 67-name model input schema, in training
// order. The order is load-bearing: a FeatureVector built without an
// artifact-declared schema follows this sequence position by position.
var CanonicalFeatures = []string{
	ColTMax, ColTMin, ColRH, ColWindSpeed,

	"Albedo_linear",
	"skin_temperature_min_C",
	"skin_temperature_max_C",
	"NDBI_linear",
	"NDVI_original",

	ColLatitude, ColLongitude, ColElevation, ColStation,

	"Temperature_at_RH",
	"Max_HI",

	"is_dry_season",
	"is_wet_season",
	"is_cool_dry_season",
	"is_hot_dry_season",

	"U_wind_component",
	"V_wind_component",
	"Temp_Range",
	"Temp_Mean",

	"Month_sin",
	"Month_cos",
	"Day_of_Year_sin",
	"Day_of_Year_cos",

	"TMAX_Rolling_Mean_7",
	"TMAX_Rolling_Max_7",
	"TMIN_Rolling_Mean_7",
	"TMIN_Rolling_Max_7",
	"Max_HI_Rolling_Mean_7",
	"Max_HI_Rolling_Max_7",
	"Max_HI_Rolling_Min_7",
	"RH_Rolling_Mean_7",
	"RH_Rolling_Min_7",

	"TMAX_Rolling_Mean_30",
	"TMAX_Rolling_Max_30",
	"TMIN_Rolling_Mean_30",
	"TMIN_Rolling_Max_30",
	"Max_HI_Rolling_Mean_30",
	"Max_HI_Rolling_Max_30",
	"Max_HI_Rolling_Min_30",
	"RH_Rolling_Mean_30",
	"RH_Rolling_Min_30",

	ColTSq, ColRHSq, ColTxRH, ColTSqxRH, ColTxRHSq, ColTSqxRHSq, ColTMaxWind,

	"Temperature_at_RH_lag_1",
	"Temperature_at_RH_lag_2",
	"Temperature_at_RH_lag_3",
	"Temperature_at_RH_lag_4",
	"Temperature_at_RH_lag_5",
	"Temperature_at_RH_lag_6",
	"Temperature_at_RH_lag_8",
	"Temperature_at_RH_lag_10",
	"Temperature_at_RH_lag_11",
	"Temperature_at_RH_lag_12",
	"Temperature_at_RH_lag_13",

	"Max_HI_lag_1",
	"Max_HI_lag_2",

	"RH_lag_1",
	"RH_lag_5",
}

// extraAliases lists alternate spellings seen across backends, beyond plain
// case folding. Relational columns cannot carry '^', so the interaction
// columns surface under sanitized names there.
var extraAliases = map[string]string{
	"t_sq":          ColTSq,
	"t2":            ColTSq,
	"rh_sq":         ColRHSq,
	"rh2":           ColRHSq,
	"t_x_rh":        ColTxRH,
	"t_sq_x_rh":     ColTSqxRH,
	"t2xrh":         ColTSqxRH,
	"t_x_rh_sq":     ColTxRHSq,
	"txrh2":         ColTxRHSq,
	"t_sq_x_rh_sq":  ColTSqxRHSq,
	"t2xrh2":        ColTSqxRHSq,
	"tmax_x_wind":   ColTMaxWind,
	"obs_date":      ColDate,
	"station_id":    ColStation,
	"lat":           ColLatitude,
	"lon":           ColLongitude,
	"lng":           ColLongitude,
	"elev":          ColElevation,
	"windspeed":     ColWindSpeed,
	"rel_humidity":  ColRH,
	"skin_temp_min": "skin_temperature_min_C",
	"skin_temp_max": "skin_temperature_max_C",
}

// aliasTable maps the folded form of every recognized column name to its
// canonical spelling. Total over CanonicalFeatures plus identifier/date
// columns; built once at init.
var aliasTable = buildAliasTable()

func buildAliasTable() map[string]string {
	t := make(map[string]string, len(CanonicalFeatures)+len(extraAliases)+2)
	for _, name := range CanonicalFeatures {
		t[foldColumn(name)] = name
	}
	t[foldColumn(ColDate)] = ColDate
	for alias, name := range extraAliases {
		t[alias] = name
	}
	return t
}

func foldColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Canonicalize resolves a raw backend column name to its canonical spelling.
// Matching is case-insensitive. The second return is false for columns the
// schema does not know about.
func Canonicalize(name string) (string, bool) {
	canonical, ok := aliasTable[foldColumn(name)]
	return canonical, ok
}

// CanonicalizeColumns remaps a raw column map onto canonical names, dropping
// unrecognized columns. When a backend carries both the canonical spelling
// and an alias for the same column, the canonical spelling wins.
func CanonicalizeColumns(raw map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(raw))
	for name, v := range raw {
		if canonical, ok := Canonicalize(name); ok && canonical == strings.TrimSpace(name) {
			out[canonical] = v
		}
	}
	for name, v := range raw {
		canonical, ok := Canonicalize(name)
		if !ok {
			continue
		}
		if _, dup := out[canonical]; dup {
			continue
		}
		out[canonical] = v
	}
	return out
}
