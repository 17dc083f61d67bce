package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var (
	corsMethods = []string{
		http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	// corsRequestHeaders covers session bearer tokens, CBOR bodies and
	// trace propagation from the app UI.
	corsRequestHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Request-Id", "traceparent"}
	// corsResponseHeaders are read by clients: pagination, created resources,
	// offline back-off and log correlation.
	corsResponseHeaders = []string{"Link", "Location", "Retry-After", "X-Request-Id"}
)

// CORS allows the given origins to call the agent. No origins means any
// origin, which suits a loopback agent serving a local app UI.
func CORS(origins ...string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: corsMethods,
		AllowedHeaders: corsRequestHeaders,
		ExposedHeaders: corsResponseHeaders,
		MaxAge:         300,
	})
}
