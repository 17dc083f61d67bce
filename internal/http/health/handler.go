// Package health serves the liveness endpoint of the agent.
package health

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/fitsocial/internal/platform/logging"
)

const checkTimeout = 2 * time.Second

// Checker reports whether a dependency is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// Response is the payload for the health endpoint.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler returns a plain HTTP handler that pings every checker. Any failure
// turns the response into 503 with status "degraded".
func Handler(checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := Response{Status: "healthy"}
		code := http.StatusOK

		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			defer cancel()
			resp.Checks = make(map[string]string, len(checks))
			for _, name := range slices.Sorted(maps.Keys(checks)) {
				if err := checks[name].Ping(ctx); err != nil {
					applog.LogWarn(r.Context(), "health check failed", zap.String("check", name), zap.Error(err))
					resp.Checks[name] = "unavailable"
					resp.Status = "degraded"
					code = http.StatusServiceUnavailable
					continue
				}
				resp.Checks[name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
