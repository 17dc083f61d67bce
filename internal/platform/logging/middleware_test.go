package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLoggerLevels(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		level  zapcore.Level
	}{
		{name: "success", path: "/v1/feed", status: http.StatusOK, level: zapcore.InfoLevel},
		{name: "client error", path: "/v1/profile", status: http.StatusNotFound, level: zapcore.InfoLevel},
		{name: "offline", path: "/v1/feed", status: http.StatusServiceUnavailable, level: zapcore.WarnLevel},
		{name: "health probe", path: "/health", status: http.StatusOK, level: zapcore.DebugLevel},
		{name: "degraded health", path: "/health", status: http.StatusServiceUnavailable, level: zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			handler := AccessLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req = req.WithContext(WithLogger(req.Context(), zap.New(core)))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			entries := recorded.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			if entries[0].Level != tt.level {
				t.Fatalf("level = %s, want %s", entries[0].Level, tt.level)
			}
			fields := entries[0].ContextMap()
			if fields["path"] != tt.path || fields["status"] != int64(tt.status) {
				t.Fatalf("unexpected fields: %v", fields)
			}
			if _, ok := fields["duration"]; !ok {
				t.Fatal("expected duration field")
			}
		})
	}
}

func TestAccessLoggerDefaultsStatusAndRoute(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), zap.New(core))))
		})
	})
	router.Use(AccessLogger())
	router.Get("/v1/following/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/following/user-b", nil))

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusOK) {
		t.Fatalf("expected implicit 200, got %v", fields["status"])
	}
	if fields["route"] != "/v1/following/{id}" {
		t.Fatalf("expected route pattern, got %v", fields["route"])
	}
	if fields["bytes"] != int64(2) {
		t.Fatalf("expected 2 bytes, got %v", fields["bytes"])
	}
}

func TestRequestLoggerCorrelation(t *testing.T) {
	tests := []struct {
		name      string
		projectID string
		header    string
		requestID string
		want      string
	}{
		{
			name:      "trace resource",
			projectID: "fit-demo",
			header:    sampleTraceparent,
			requestID: "req-1",
			want:      "projects/fit-demo/traces/3d23d071b5bfd6579171efce907685cb",
		},
		{name: "request id without project", header: sampleTraceparent, requestID: "req-2", want: "req-2"},
		{name: "request id without header", projectID: "fit-demo", requestID: "req-3", want: "req-3"},
		{name: "nothing to correlate", projectID: "fit-demo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var logger *zap.Logger
			inner := RequestLogger(tt.projectID)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = CorrelationID(r.Context())
				logger = LoggerFromContext(r.Context())
			}))
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := r.Context()
				if tt.requestID != "" {
					ctx = context.WithValue(ctx, chimiddleware.RequestIDKey, tt.requestID)
				}
				inner.ServeHTTP(w, r.WithContext(ctx))
			})

			req := httptest.NewRequest(http.MethodGet, "/v1/feed", nil)
			if tt.header != "" {
				req.Header.Set("traceparent", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Fatalf("correlation = %q, want %q", got, tt.want)
			}
			if logger == nil {
				t.Fatal("expected a request logger")
			}
		})
	}
}
