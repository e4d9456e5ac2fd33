// Package http serves the eligibility prediction API.
package http

import (
	"context"
	"net/http"

	"eligibility/db"
	"eligibility/ml"
	"eligibility/monitoring"

	"go.uber.org/zap"
)

// Scorer maps a feature vector to an eligibility label.
type Scorer interface {
	Predict(ctx context.Context, features ml.FeatureVector) (ml.Label, error)
}

// Publisher receives events for live subscribers.
type Publisher interface {
	Publish(eventType monitoring.EventType, data any)
}

// Handler 处理预测相关请求
type Handler struct {
	scorer Scorer
	store  db.Store
	feed   Publisher
	logger *zap.Logger
}

// NewHandler wires the request handlers. feed may be nil.
func NewHandler(scorer Scorer, store db.Store, feed Publisher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{scorer: scorer, store: store, feed: feed, logger: logger}
}

// Routes 注册API路由
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("GET /history", h.handleHistory)
	mux.HandleFunc("DELETE /delete-all-predictions", h.handleDeleteAll)
	mux.HandleFunc("GET /stats", h.handleStats)
	mux.HandleFunc("GET /health", h.handleHealth)
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := db.DecodeRecord(r.Body)
	if err != nil {
		h.fail(w, r, operational(opDecode, err))
		return
	}

	features, err := ml.AssembleFeatures(record)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	label, err := h.scorer.Predict(ctx, features)
	if err != nil {
		h.fail(w, r, operational(opScore, err))
		return
	}

	ml.FillDefaults(record, features)
	record[db.EligibilityField] = string(label)
	if err := h.store.Insert(ctx, record); err != nil {
		h.fail(w, r, operational(opStore, err))
		return
	}

	monitoring.RecordPrediction(string(label))
	resp := PredictionResponse{Eligibility: string(label)}
	h.publish(monitoring.EventPrediction, resp)
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.History(r.Context())
	if err != nil {
		h.fail(w, r, operational(opHistory, err))
		return
	}
	if records == nil {
		records = []db.Record{}
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.DeleteAll(r.Context())
	if err != nil {
		h.fail(w, r, operational(opDelete, err))
		return
	}

	monitoring.RecordDeleted(deleted)
	h.logger.Info("predictions deleted",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Int64("deleted", deleted))
	h.publish(monitoring.EventCleared, map[string]int64{"deleted_count": deleted})
	respondJSON(w, http.StatusOK, DeleteResponse{Message: "All predictions deleted", DeletedCount: deleted})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := db.CollectStats(r.Context(), h.store, string(ml.Eligible))
	if err != nil {
		h.fail(w, r, operational(opStats, err))
		return
	}
	respondJSON(w, http.StatusOK, StatsResponse{
		TotalCandidates: stats.Total,
		EligibleCount:   stats.Eligible,
		IneligibleCount: stats.Ineligible,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("store unreachable", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) publish(eventType monitoring.EventType, data any) {
	if h.feed != nil {
		h.feed.Publish(eventType, data)
	}
}
