package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dfodeker/corekit/internal/metrics"
	"github.com/dfodeker/corekit/middleware"
	"github.com/dfodeker/corekit/token"
)

type ctxKey int

const claimsKey ctxKey = iota

func claimsFromContext(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*token.Claims)
	return c, ok
}

// requireAuth admits requests whose bearer token verifies against the
// service's token configuration and stores the claims in the context.
func (cfg *apiConfig) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearerToken, err := token.GetBearerToken(r.Header)
		if err != nil {
			metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
			respondWithError(w, http.StatusUnauthorized, "Authentication credentials are missing or invalid", err)
			return
		}

		claims, err := cfg.tokens.Claims(bearerToken)
		if err != nil {
			result, msg := "invalid", "Authentication credentials are invalid."
			if errors.Is(err, token.ErrExpired) {
				result, msg = "expired", "Token has expired."
			}
			metrics.TokenVerificationsTotal.WithLabelValues(result).Inc()
			slog.WarnContext(r.Context(), "token rejected",
				"request_id", middleware.GetRequestID(r.Context()),
				"result", result,
				"error", err,
			)
			respondWithError(w, http.StatusUnauthorized, msg, err)
			return
		}
		if len(claims.Payload) == 0 {
			metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
			respondWithError(w, http.StatusUnauthorized, "Authentication credentials are invalid.", token.ErrMissingField)
			return
		}
		metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
