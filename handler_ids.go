package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dfodeker/corekit/internal/metrics"
	"github.com/dfodeker/corekit/middleware"
	"github.com/dfodeker/corekit/snowflake"
	"github.com/go-chi/chi/v5"
)

const maxBatchSize = 1000

type DecodedIDResponse struct {
	snowflake.DecodedID
	GeneratedAt     time.Time `json:"generated_at"`
	GeneratedAtText string    `json:"generated_at_text"`
}

func (cfg *apiConfig) handlerGenerateIDs(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	count := 1
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxBatchSize {
			respondWithError(w, http.StatusBadRequest, "count must be an integer between 1 and 1000", err)
			return
		}
		count = n
	}

	ids, err := cfg.ids.GenerateBatch(count)
	if err != nil {
		reason := idErrorReason(err)
		metrics.IDErrorsTotal.WithLabelValues(reason).Inc()
		slog.ErrorContext(r.Context(), "id generation failed",
			"request_id", reqID,
			"count", count,
			"reason", reason,
			"error", err,
		)
		respondWithError(w, idErrorStatus(err), "Unable to generate ids", err)
		return
	}
	metrics.IDsGeneratedTotal.Add(float64(len(ids)))

	type response struct {
		IDs []string `json:"ids"`
	}
	out := response{IDs: make([]string, len(ids))}
	for i, id := range ids {
		out.IDs[i] = strconv.FormatUint(id, 10)
	}
	respondWithJSON(w, http.StatusCreated, out)
}

func (cfg *apiConfig) handlerParseID(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := snowflake.ParseString(raw)
	if err != nil {
		metrics.IDErrorsTotal.WithLabelValues("invalid_id").Inc()
		slog.WarnContext(r.Context(), "id decode failed: invalid id",
			"request_id", middleware.GetRequestID(r.Context()),
			"id", raw,
			"error", err,
		)
		respondWithError(w, http.StatusBadRequest, "Invalid id", err)
		return
	}

	decoded := cfg.ids.Decode(id)
	epoch := cfg.ids.Epoch()
	respondWithJSON(w, http.StatusOK, DecodedIDResponse{
		DecodedID:       decoded,
		GeneratedAt:     decoded.GenerationTime(epoch),
		GeneratedAtText: decoded.GenerationTimeString(epoch),
	})
}

func idErrorReason(err error) string {
	switch {
	case errors.Is(err, snowflake.ErrClockRollback):
		return "clock_rollback"
	case errors.Is(err, snowflake.ErrTimestampOverflow):
		return "timestamp_overflow"
	case errors.Is(err, snowflake.ErrBeforeEpoch):
		return "before_epoch"
	case errors.Is(err, snowflake.ErrLockPoisoned):
		return "poisoned"
	default:
		return "other"
	}
}

// idErrorStatus maps transient clock trouble to 503 so clients retry.
func idErrorStatus(err error) int {
	if errors.Is(err, snowflake.ErrClockRollback) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
