package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const maxRequestIDLength = 128

// RequestID propagates X-Request-Id. A caller-supplied id is kept when it is
// a safe log token; otherwise a time-ordered UUIDv7 is assigned. The id is
// stored under chi's key so GetReqID and the request logger find it.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(chimiddleware.RequestIDHeader)
			if !safeLogToken(id) {
				id = newRequestID()
			}
			w.Header().Set(chimiddleware.RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// safeLogToken reports whether s is non-empty, bounded and printable ASCII,
// so it cannot split or forge log lines.
func safeLogToken(s string) bool {
	if s == "" || len(s) > maxRequestIDLength {
		return false
	}
	for _, c := range []byte(s) {
		if c < ' ' || c > '~' {
			return false
		}
	}
	return true
}
