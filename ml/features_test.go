package ml

import (
	"errors"
	"math"
	"testing"

	"github.com/goccy/go-json"
)

func TestAssembleFeaturesDefaultsToZero(t *testing.T) {
	vector, err := AssembleFeatures(map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vector) != FeatureCount {
		t.Fatalf("expected %d features, got %d", FeatureCount, len(vector))
	}
	for i, v := range vector {
		if v != 0 {
			t.Fatalf("feature %d: expected 0, got %f", i, v)
		}
	}
}

func TestAssembleFeaturesOrder(t *testing.T) {
	record := map[string]any{}
	for i, name := range FeatureNames() {
		record[name] = float64(i + 1)
	}
	record["Name"] = "Asha"

	vector, err := AssembleFeatures(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range vector {
		if v != float64(i+1) {
			t.Errorf("feature %s: expected %d, got %f", FeatureNames()[i], i+1, v)
		}
	}
}

func TestAssembleFeaturesValueTypes(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    float64
		wantErr bool
	}{
		{name: "number", value: 8.2, want: 8.2},
		{name: "int", value: 3, want: 3},
		{name: "int64", value: int64(120), want: 120},
		{name: "numeric string", value: "7.5", want: 7.5},
		{name: "padded string", value: " 9 ", want: 9},
		{name: "true", value: true, want: 1},
		{name: "false", value: false, want: 0},
		{name: "json number", value: json.Number("6.25"), want: 6.25},
		{name: "word", value: "abc", wantErr: true},
		{name: "empty string", value: "", wantErr: true},
		{name: "null", value: nil, wantErr: true},
		{name: "array", value: []any{1.0}, wantErr: true},
		{name: "object", value: map[string]any{"v": 1.0}, wantErr: true},
		{name: "nan string", value: "NaN", wantErr: true},
		{name: "infinity string", value: "Infinity", wantErr: true},
		{name: "negative inf string", value: "-Inf", wantErr: true},
		{name: "nan number", value: math.NaN(), wantErr: true},
		{name: "inf number", value: math.Inf(1), wantErr: true},
		{name: "overflowing json number", value: json.Number("1e400"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vector, err := AssembleFeatures(map[string]any{"CGPA": tt.value})
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if verr.Field != "CGPA" {
					t.Fatalf("expected field CGPA, got %s", verr.Field)
				}
				if err.Error() != "Invalid value for CGPA" {
					t.Fatalf("unexpected message: %s", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if vector[0] != tt.want {
				t.Fatalf("expected %f, got %f", tt.want, vector[0])
			}
		})
	}
}

func TestAssembleFeaturesIgnoresOtherKeys(t *testing.T) {
	vector, err := AssembleFeatures(map[string]any{
		"Active_Backlogs": "abc",
		"Branch":          []any{"CSE"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vector[1] != 0 {
		t.Fatalf("expected Active Backlogs 0, got %f", vector[1])
	}
}

func TestFillDefaults(t *testing.T) {
	record := map[string]any{"CGPA": "8.1", "Active_Backlogs": "1", "Name": "Ravi"}
	vector, err := AssembleFeatures(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	FillDefaults(record, vector)

	for _, name := range FeatureNames() {
		if _, ok := record[name]; !ok {
			t.Errorf("missing required key %q", name)
		}
	}
	if record["CGPA"] != "8.1" {
		t.Errorf("supplied value must be kept verbatim, got %v", record["CGPA"])
	}
	if record["Active Backlogs"] != 0.0 {
		t.Errorf("expected default 0, got %v", record["Active Backlogs"])
	}
	if record["Active_Backlogs"] != "1" {
		t.Errorf("unrelated key must be kept verbatim, got %v", record["Active_Backlogs"])
	}
	if record["LeetCode_Solved"] != 0.0 {
		t.Errorf("expected default 0, got %v", record["LeetCode_Solved"])
	}
	if record["Name"] != "Ravi" {
		t.Errorf("extra field lost")
	}
}

func TestFeatureNamesIsACopy(t *testing.T) {
	names := FeatureNames()
	names[0] = "changed"
	if FeatureNames()[0] != "CGPA" {
		t.Fatal("FeatureNames must not expose internal state")
	}
}
