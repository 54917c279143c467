package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dfodeker/corekit/internal/metrics"
	"github.com/dfodeker/corekit/middleware"
)

const maxPayloadBytes = 64 << 10

type TokenResponse struct {
	Token     string    `json:"token"`
	ID        string    `json:"jti"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handlerIssueToken signs the request body, which must be a JSON value.
func (cfg *apiConfig) handlerIssueToken(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Payload too large", err)
			return
		}
		respondWithError(w, http.StatusBadRequest, "Unable to read request body", err)
		return
	}
	if !json.Valid(body) {
		slog.WarnContext(r.Context(), "token issue failed: invalid request body",
			"request_id", reqID,
		)
		respondWithError(w, http.StatusBadRequest, "Please provide a JSON payload", nil)
		return
	}

	signed, err := cfg.tokens.Generate(json.RawMessage(body))
	if err != nil {
		slog.ErrorContext(r.Context(), "token issue failed",
			"request_id", reqID,
			"error", err,
		)
		respondWithError(w, http.StatusInternalServerError, "Unable to issue token", err)
		return
	}
	claims, err := cfg.tokens.Claims(signed)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Unable to issue token", err)
		return
	}
	metrics.TokensIssuedTotal.Inc()

	slog.InfoContext(r.Context(), "token issued",
		"request_id", reqID,
		"jti", claims.ID,
	)
	respondWithJSON(w, http.StatusCreated, TokenResponse{
		Token:     signed,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	})
}

func (cfg *apiConfig) handlerVerifyToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	type response struct {
		Payload   json.RawMessage `json:"payload"`
		ID        string          `json:"jti"`
		CreatedAt time.Time       `json:"created_at"`
		ExpiresAt time.Time       `json:"expires_at"`
	}
	respondWithJSON(w, http.StatusOK, response{
		Payload:   claims.Payload,
		ID:        claims.ID,
		CreatedAt: time.Unix(claims.CreateAt, 0).UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	})
}
