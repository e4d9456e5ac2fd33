package http

import (
	"errors"
	"net/http"

	"eligibility/ml"
	"eligibility/monitoring"

	"go.uber.org/zap"
)

// Operation names, used as the op label on logs and metrics.
const (
	opDecode  = "decode"
	opScore   = "score"
	opStore   = "store"
	opHistory = "history"
	opDelete  = "delete"
	opStats   = "stats"
)

var publicMessages = map[string]string{
	opDecode:  "failed to decode request",
	opScore:   "failed to score candidate",
	opStore:   "failed to store prediction",
	opHistory: "failed to load history",
	opDelete:  "failed to delete predictions",
	opStats:   "failed to compute stats",
}

// OperationalError is an internal failure. Only Message reaches the client;
// Err is logged.
type OperationalError struct {
	Op      string
	Message string
	Err     error
}

func (e *OperationalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *OperationalError) Unwrap() error {
	return e.Err
}

func operational(op string, err error) *OperationalError {
	message, ok := publicMessages[op]
	if !ok {
		message = "internal server error"
	}
	return &OperationalError{Op: op, Message: message, Err: err}
}

// fail writes the response for err: 400 for a validation error, 500 for
// everything else.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *ml.ValidationError
	if errors.As(err, &invalid) {
		monitoring.RecordValidationError(invalid.Field)
		h.logger.Info("invalid prediction request",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("field", invalid.Field))
		respondError(w, http.StatusBadRequest, invalid.Error())
		return
	}

	var opErr *OperationalError
	if !errors.As(err, &opErr) {
		opErr = operational("", err)
	}
	monitoring.RecordOperationalError(opErr.Op)
	h.logger.Error("request failed",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("op", opErr.Op),
		zap.Error(opErr.Err))
	respondError(w, http.StatusInternalServerError, opErr.Message)
}
