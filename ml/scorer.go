package ml

import (
	"context"
	"errors"
	"fmt"
)

// Label is the human-readable eligibility outcome.
type Label string

const (
	Eligible    Label = "Eligible"
	NotEligible Label = "Not Eligible"
)

// ErrUnexpectedClass is returned when the classifier yields a class other than 0 or 1.
var ErrUnexpectedClass = errors.New("classifier returned an unexpected class")

// Scorer applies the scaler then the classifier. It holds no mutable state
// and is safe for concurrent use.
type Scorer struct {
	scaler     Scaler
	classifier Classifier
}

func NewScorer(scaler Scaler, classifier Classifier) *Scorer {
	return &Scorer{scaler: scaler, classifier: classifier}
}

func (s *Scorer) Predict(ctx context.Context, features FeatureVector) (Label, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	scaled, err := s.scaler.Transform(features)
	if err != nil {
		return "", fmt.Errorf("scale features: %w", err)
	}
	class, _, err := s.classifier.Predict(scaled)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	return LabelFor(class)
}

// LabelFor maps a binary class to its label.
func LabelFor(class int) (Label, error) {
	switch class {
	case 1:
		return Eligible, nil
	case 0:
		return NotEligible, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnexpectedClass, class)
	}
}
