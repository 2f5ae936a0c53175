// Package domain models the heat index forecast data: canonical column
// naming, station reference records, observation rows, the 67-feature model
// input vector, and the clamped forecast output.
//
// # Column naming
//
// The same observation table reaches the pipeline from two backends with
// different casing conventions: the flat CSV dataset carries training-time
// headers ("TMAX", "Max_HI_Rolling_Mean_7", "T^2"), while PostgreSQL folds
// unquoted identifiers to lowercase and cannot hold '^' in a plain column
// name ("tmax", "max_hi_rolling_mean_7", "t_sq"). [Canonicalize] resolves
// every recognized spelling to the training-time form through one declarative
// alias table; backends apply it before a row leaves their package, so
// downstream code only ever sees canonical names.
//
// # Feature vector
//
// [CanonicalFeatures] fixes the 67-name model input schema in training
// order. [BuildFeatures] fills it from a single resolved row: 60 values are
// direct copies (rolling statistics, lags, season flags and cyclic encodings
// are precomputed upstream), and the seven interaction terms are derived
// here from the row's own TMAX, RH and WIND_SPEED. A model artifact may
// declare its own name order, which then replaces the canonical one.
//
// Missing columns default to 0.0 and are surfaced as warnings; strict mode
// turns them into a [FeatureAlignmentError] instead. The default stays
// lenient for compatibility with historical datasets whose early rows lack
// long-lag columns.
//
// # Station identifiers
//
// The feature schema numbers stations from 0 (the "Station" feature is that
// identifier cast to float). Output payloads number stations from 1. The
// +1 offset is applied exactly once, where [Forecast] entries are created.
package domain
