package http

import (
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type PredictionResponse struct {
	Eligibility string `json:"Eligibility"`
}

type DeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

type StatsResponse struct {
	TotalCandidates int64 `json:"totalCandidates"`
	EligibleCount   int64 `json:"eligibleCount"`
	IneligibleCount int64 `json:"ineligibleCount"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// respondJSON 写入JSON响应
func respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		zap.L().Error("failed to encode JSON", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
