package ml

import (
	"math"
	"strconv"
	"strings"
)

// FeatureCount is the length of every feature vector the artifacts accept.
const FeatureCount = 11

var requiredFeatures = [FeatureCount]string{
	"CGPA",
	"Active Backlogs",
	"DS_Algo_Proficiency",
	"System_Design_Proficiency",
	"Internship_Duration",
	"Coding_Test_Score",
	"Communication_Grade",
	"Behavioral_Interview_Score",
	"Adaptability_Score",
	"Cultural_Fit_Score",
	"LeetCode_Solved",
}

// FeatureVector holds the model inputs in FeatureNames order.
type FeatureVector []float64

// ValidationError reports a required feature whose value is not numeric.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "Invalid value for " + e.Field
}

func FeatureNames() []string {
	names := make([]string, FeatureCount)
	copy(names, requiredFeatures[:])
	return names
}

// AssembleFeatures extracts the required features from a loosely typed record
// by exact key. Absent features default to zero; other keys are ignored.
func AssembleFeatures(record map[string]any) (FeatureVector, error) {
	vector := make(FeatureVector, FeatureCount)
	for i, name := range requiredFeatures {
		raw, ok := record[name]
		if !ok {
			continue
		}
		value, ok := toFloat(raw)
		if !ok {
			return nil, &ValidationError{Field: name}
		}
		vector[i] = value
	}
	return vector, nil
}

// FillDefaults writes the assembled value into record for every required
// feature the client left out.
func FillDefaults(record map[string]any, vector FeatureVector) {
	for i, name := range requiredFeatures {
		if _, ok := record[name]; ok {
			continue
		}
		if i < len(vector) {
			record[name] = vector[i]
		} else {
			record[name] = 0.0
		}
	}
}

type float64er interface {
	Float64() (float64, error)
}

// toFloat converts a decoded JSON value to a finite float64.
func toFloat(raw any) (float64, bool) {
	f, ok := numeric(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case float64er:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
