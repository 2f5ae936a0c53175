package domain

// FeatureCount is the size of the model input vector.
const FeatureCount = 67

// FeatureVector is the ordered model input: Names[i] labels Values[i].
// Length and order always match the schema it was built against.
type FeatureVector struct {
	Names  []string
	Values []float64
}

// BuildFeatures assembles the model input vector from one resolved row.
//
// schema is the feature-name order declared by the model artifact; pass nil
// to use CanonicalFeatures. The seven interaction terms are computed here
// from the row's own TMAX, RH and WIND_SPEED so they can never mix values
// across rows. The Station feature is the 0-based station identifier cast
// to float, taken from the argument rather than the row.
//
// A schema name with no value in the row resolves to 0.0 and is returned in
// missing; with strict set, any missing name yields a FeatureAlignmentError
// instead. The returned vector is complete in both modes' success paths.
func BuildFeatures(row Row, stationID int, schema []string, strict bool) (FeatureVector, []string, error) {
	if schema == nil {
		schema = CanonicalFeatures
	}

	t := row.ValueOrZero(ColTMax)
	rh := row.ValueOrZero(ColRH)
	w := row.ValueOrZero(ColWindSpeed)

	derived := map[string]float64{
		ColStation:  float64(stationID),
		ColTSq:      t * t,
		ColRHSq:     rh * rh,
		ColTxRH:     t * rh,
		ColTSqxRH:   t * t * rh,
		ColTxRHSq:   t * rh * rh,
		ColTSqxRHSq: t * t * rh * rh,
		ColTMaxWind: t * w,
	}

	fv := FeatureVector{
		Names:  make([]string, len(schema)),
		Values: make([]float64, len(schema)),
	}
	var missing []string

	for i, name := range schema {
		fv.Names[i] = name
		if v, ok := derived[name]; ok {
			fv.Values[i] = v
			continue
		}
		v, ok := row.Value(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		fv.Values[i] = v
	}

	if strict && len(missing) > 0 {
		return FeatureVector{}, missing, &FeatureAlignmentError{Missing: missing}
	}
	return fv, missing, nil
}
