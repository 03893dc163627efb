package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout applies a per-request deadline through the request context. The
// evaluator keeps its own local budget; this bound protects against a
// stalled dependency holding a connection open.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
