package ml

import (
	"errors"
	"fmt"
)

const (
	ModelLogisticRegression = "logistic_regression"
	ModelDecisionTree       = "decision_tree"
)

func LoadModel(modelType, path string) (Classifier, error) {
	var model Classifier
	switch modelType {
	case ModelLogisticRegression:
		model = &LogisticRegression{}
	case ModelDecisionTree:
		model = &DecisionTree{}
	default:
		return nil, errors.New("unsupported model type: " + modelType)
	}
	if err := model.Load(path); err != nil {
		return nil, fmt.Errorf("load %s model from %s: %w", modelType, path, err)
	}
	return model, nil
}

// ArtifactConfig locates the classifier and scaler artifacts on disk.
type ArtifactConfig struct {
	ModelType  string
	ModelPath  string
	ScalerPath string
}

// LoadArtifacts loads both artifacts. Either one failing is fatal to the caller.
func LoadArtifacts(cfg ArtifactConfig) (*Scorer, error) {
	scaler, err := LoadScaler(cfg.ScalerPath)
	if err != nil {
		return nil, err
	}
	model, err := LoadModel(cfg.ModelType, cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	return NewScorer(scaler, model), nil
}
