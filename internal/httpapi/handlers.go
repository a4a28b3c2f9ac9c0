package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/sayingsbot/internal/database"
	"github.com/example/sayingsbot/pkg/models"
	"github.com/go-chi/chi/v5"
)

// SayingResponse is the API view of a saying with its counters
type SayingResponse struct {
	models.SayingStats
	Accuracy float64 `json:"accuracy"`
}

// ErrorDetail is the body of an error response
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error ErrorDetail `json:"error"`
}

type StatsHandler struct {
	stats  StatsReader
	logger *slog.Logger
}

func NewStatsHandler(stats StatsReader, logger *slog.Logger) *StatsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsHandler{stats: stats, logger: logger}
}

// Health pings the database
func (h *StatsHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.stats.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "Health check failed: could not ping DB", slog.Any("error", err))
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database is unreachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSayings returns every saying with its counters, ordered by id
func (h *StatsHandler) ListSayings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.stats.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list sayings", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to load statistics")
		return
	}

	resp := make([]SayingResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toResponse(row))
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetSaying returns one saying by id
func (h *StatsHandler) GetSaying(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "saying_id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "saying id must be a positive integer")
		return
	}

	row, err := h.stats.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "saying not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to get saying", slog.Int64("saying_id", id), slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to load statistics")
		return
	}
	respondJSON(w, http.StatusOK, toResponse(*row))
}

func toResponse(row models.SayingStats) SayingResponse {
	return SayingResponse{SayingStats: row, Accuracy: row.Accuracy()}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
