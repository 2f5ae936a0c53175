// Package model wraps the trained gradient-boosted regression artifact. The
// artifact is an xgboost ensemble dump evaluated with dmitryikh/leaves; an
// optional sidecar JSON file next to it declares the feature-name order the
// model was trained on.
package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitryikh/leaves"

	"github.com/heatwatch/hi-forecast/internal/domain"
)

// LoadError means the model artifact is absent or cannot be deserialized.
// It is fatal to the whole invocation: no per-station fallback exists.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model artifact %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Predictor evaluates one ordered feature vector and returns the model's raw
// output columns. Implemented by Ensemble and by test stubs.
type Predictor interface {
	Predict(features []float64) ([]float64, error)
}

// Ensemble is a loaded gradient-boosted model plus its declared schema.
type Ensemble struct {
	ens    *leaves.Ensemble
	schema []string
}

// Load reads the ensemble from artifactPath and, when schemaPath is
// non-empty, the feature-name order from the sidecar file. The schema is
// returned by value via Schema and threaded into feature building by the
// caller; nothing is held as ambient state.
func Load(artifactPath, schemaPath string) (*Ensemble, error) {
	ens, err := leaves.XGEnsembleFromFile(artifactPath, true)
	if err != nil {
		return nil, &LoadError{Path: artifactPath, Err: err}
	}

	var schema []string
	if schemaPath != "" {
		schema, err = readSchema(schemaPath)
		if err != nil {
			return nil, &LoadError{Path: schemaPath, Err: err}
		}
		if n := ens.NFeatures(); n > 0 && n != len(schema) {
			return nil, &LoadError{
				Path: schemaPath,
				Err:  fmt.Errorf("schema declares %d features, artifact expects %d", len(schema), n),
			}
		}
	}

	return &Ensemble{ens: ens, schema: schema}, nil
}

// Schema returns the artifact's declared feature-name order, or nil when the
// artifact declares none (callers then use domain.CanonicalFeatures).
func (e *Ensemble) Schema() []string { return e.schema }

// Predict evaluates the full ensemble on one feature vector. The output has
// one entry per model output group.
func (e *Ensemble) Predict(features []float64) ([]float64, error) {
	if n := e.ens.NFeatures(); n > 0 && len(features) != n {
		return nil, fmt.Errorf("model expects %d features, got %d", n, len(features))
	}
	out := make([]float64, e.ens.NOutputGroups())
	if err := e.ens.Predict(features, 0, out); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return out, nil
}

// readSchema accepts either a bare JSON array of names or an object with a
// "feature_names" key, which is what xgboost's own JSON dump carries.
func readSchema(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		return names, nil
	}

	var wrapped struct {
		FeatureNames []string `json:"feature_names"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if len(wrapped.FeatureNames) == 0 {
		return nil, fmt.Errorf("schema file %s declares no feature names", path)
	}
	return wrapped.FeatureNames, nil
}

// Runner normalizes raw predictor output to a (tomorrow, day after tomorrow)
// pair. A single-output model forecasts one horizon and the value is used
// for both days; a two-output model forecasts the horizons separately.
type Runner struct {
	predictor Predictor
}

// NewRunner wraps a predictor.
func NewRunner(p Predictor) *Runner {
	return &Runner{predictor: p}
}

// Forecast evaluates the model once for the station's feature vector and
// returns the raw, unclamped pair.
func (r *Runner) Forecast(fv domain.FeatureVector) (t1, t2 float64, err error) {
	out, err := r.predictor.Predict(fv.Values)
	if err != nil {
		return 0, 0, err
	}
	switch len(out) {
	case 0:
		return 0, 0, fmt.Errorf("model produced no output columns")
	case 1:
		return out[0], out[0], nil
	default:
		return out[0], out[1], nil
	}
}
