package ml

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
)

const defaultThreshold = 0.5

type LogisticRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Threshold float64   `json:"threshold"`
}

func (lr *LogisticRegression) Predict(features []float64) (int, float64, error) {
	if len(lr.Coef) == 0 {
		return 0, 0, errors.New("model not loaded")
	}
	if len(features) != len(lr.Coef) {
		return 0, 0, fmt.Errorf("model expects %d features, got %d", len(lr.Coef), len(features))
	}
	z := lr.Intercept
	for i, v := range features {
		z += lr.Coef[i] * v
	}
	p := 1 / (1 + math.Exp(-z))

	threshold := lr.Threshold
	if threshold <= 0 || threshold >= 1 {
		threshold = defaultThreshold
	}
	if p >= threshold {
		return 1, p, nil
	}
	return 0, 1 - p, nil
}

func (lr *LogisticRegression) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded LogisticRegression
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return err
	}
	if len(loaded.Coef) != FeatureCount {
		return fmt.Errorf("logistic model needs %d coefficients, got %d", FeatureCount, len(loaded.Coef))
	}
	*lr = loaded
	return nil
}
