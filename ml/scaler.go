package ml

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

// Scaler maps a raw feature vector into the space the classifier was fit on.
type Scaler interface {
	Transform(features FeatureVector) (FeatureVector, error)
}

// StandardScaler centers each feature on its mean and divides by its scale.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) Transform(features FeatureVector) (FeatureVector, error) {
	if len(features) != len(s.Mean) || len(features) != len(s.Scale) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(features))
	}
	out := make(FeatureVector, len(features))
	for i, v := range features {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

// MinMaxScaler maps each feature onto [0, 1] using the training range.
type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

func (s *MinMaxScaler) Transform(features FeatureVector) (FeatureVector, error) {
	if len(features) != len(s.Min) || len(features) != len(s.Max) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Min), len(features))
	}
	out := make(FeatureVector, len(features))
	for i, v := range features {
		out[i] = normalizeFeature(v, s.Min[i], s.Max[i])
	}
	return out, nil
}

func normalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}

type scalerArtifact struct {
	Kind  string    `json:"kind"`
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
	Min   []float64 `json:"min"`
	Max   []float64 `json:"max"`
}

// LoadScaler reads a scaler artifact. An artifact without a kind is read as
// a standard scaler.
func LoadScaler(path string) (Scaler, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	var artifact scalerArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("decode scaler %s: %w", path, err)
	}

	switch artifact.Kind {
	case "", ScalerStandard:
		if len(artifact.Mean) != FeatureCount || len(artifact.Scale) != FeatureCount {
			return nil, fmt.Errorf("standard scaler needs %d means and scales, got %d/%d",
				FeatureCount, len(artifact.Mean), len(artifact.Scale))
		}
		return &StandardScaler{Mean: artifact.Mean, Scale: artifact.Scale}, nil
	case ScalerMinMax:
		if len(artifact.Min) != FeatureCount || len(artifact.Max) != FeatureCount {
			return nil, fmt.Errorf("minmax scaler needs %d mins and maxs, got %d/%d",
				FeatureCount, len(artifact.Min), len(artifact.Max))
		}
		return &MinMaxScaler{Min: artifact.Min, Max: artifact.Max}, nil
	default:
		return nil, errors.New("unsupported scaler kind: " + artifact.Kind)
	}
}
