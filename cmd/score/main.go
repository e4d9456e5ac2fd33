package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"eligibility/config"
	"eligibility/ml"

	"github.com/goccy/go-json"
)

// result is one scored candidate; exactly one of Eligibility and Error is set.
type result struct {
	Eligibility string `json:"Eligibility,omitempty"`
	Error       string `json:"error,omitempty"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	modelType := flag.String("model_type", "", "classifier type (default from config)")
	modelPath := flag.String("model_path", "", "classifier artifact path (default from config)")
	scalerPath := flag.String("scaler_path", "", "scaler artifact path (default from config)")
	input := flag.String("input", "-", "candidate JSON file, object or array of objects; - reads stdin")
	listFeatures := flag.Bool("features", false, "print the feature names the model reads, in order, and exit")
	flag.Parse()

	if *listFeatures {
		writeFeatureNames(os.Stdout)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	artifacts := ml.ArtifactConfig{
		ModelType:  firstNonEmpty(*modelType, cfg.Model.Type),
		ModelPath:  firstNonEmpty(*modelPath, cfg.Model.Path),
		ScalerPath: firstNonEmpty(*scalerPath, cfg.Model.ScalerPath),
	}

	scorer, err := ml.LoadArtifacts(artifacts)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}

	candidates, err := readCandidates(*input)
	if err != nil {
		log.Fatalf("failed to read candidates: %v", err)
	}

	results := make([]result, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, score(context.Background(), scorer, candidate))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		log.Fatalf("failed to write results: %v", err)
	}
}

func score(ctx context.Context, scorer *ml.Scorer, candidate map[string]any) result {
	features, err := ml.AssembleFeatures(candidate)
	if err != nil {
		return result{Error: err.Error()}
	}
	label, err := scorer.Predict(ctx, features)
	if err != nil {
		return result{Error: err.Error()}
	}
	return result{Eligibility: string(label)}
}

func readCandidates(path string) ([]map[string]any, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var one map[string]any
	if err := json.Unmarshal(data, &one); err == nil && one != nil {
		return []map[string]any{one}, nil
	}
	var many []map[string]any
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, fmt.Errorf("expected a JSON object or array of objects: %w", err)
	}
	if len(many) == 0 {
		return nil, errors.New("no candidates in input")
	}
	return many, nil
}

// writeFeatureNames lists the keys a candidate record must carry, one per line.
func writeFeatureNames(w io.Writer) {
	for _, name := range ml.FeatureNames() {
		fmt.Fprintln(w, name)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
