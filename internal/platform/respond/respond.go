// Package respond renders RFC 9457 problem details for the router-level
// fallbacks and maps social-core errors onto Huma status errors.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/janisto/fitsocial/internal/domain"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
)

const (
	msgNotFound         = "resource not found"
	msgInternalServer   = "internal server error"
	schemaPath          = "/schemas/ErrorModel.json"
	retryAfterSeconds   = "30"
	contentTypeJSON     = "application/problem+json"
	contentTypeCBOR     = "application/problem+cbor"
	headerRetryAfter    = "Retry-After"
	headerLink          = "Link"
	headerAllow         = "Allow"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	mediaTypeCBOR       = "application/cbor"
	mediaTypeCBORSuffix = "+cbor"
)

// problem mirrors huma.ErrorModel with the $schema link huma adds to its own
// error responses.
type problem struct {
	Schema string              `json:"$schema,omitempty"`
	Title  string              `json:"title,omitempty"`
	Status int                 `json:"status,omitempty"`
	Detail string              `json:"detail,omitempty"`
	Errors []*huma.ErrorDetail `json:"errors,omitempty"`
}

// Error converts an error from the social core into the Huma error a handler
// returns. Unknown errors are logged and reported as 500 without detail.
func Error(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.ErrorWithHeaders(huma.Error503ServiceUnavailable("request canceled"),
			http.Header{headerRetryAfter: {retryAfterSeconds}})
	case errors.Is(err, domain.ErrNotAuthenticated):
		return huma.ErrorWithHeaders(huma.Error401Unauthorized("not signed in"),
			http.Header{"WWW-Authenticate": {"Bearer"}})
	case errors.Is(err, domain.ErrInvalidUsername):
		return huma.Error422UnprocessableEntity("invalid username", err)
	case errors.Is(err, domain.ErrInvalidSettings):
		return huma.Error422UnprocessableEntity("invalid privacy settings", err)
	case errors.Is(err, domain.ErrInvalidActivity):
		return huma.Error422UnprocessableEntity("invalid activity", err)
	case errors.Is(err, domain.ErrCannotFollowSelf):
		return huma.Error422UnprocessableEntity("cannot follow yourself")
	case errors.Is(err, domain.ErrUsernameTaken):
		return huma.Error409Conflict("username already taken")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return huma.Error409Conflict("profile already exists")
	case errors.Is(err, domain.ErrAlreadyFollowing):
		return huma.Error409Conflict("already following")
	case errors.Is(err, domain.ErrActivityConflict):
		return huma.Error409Conflict("activity id already in use")
	case errors.Is(err, domain.ErrVersionConflict):
		return huma.Error409Conflict("profile was modified concurrently, retry")
	case errors.Is(err, domain.ErrFollowingNotAllowed):
		return huma.Error403Forbidden("this user does not accept followers")
	case errors.Is(err, domain.ErrUserNotFound):
		return huma.Error404NotFound("user not found")
	case errors.Is(err, domain.ErrProfileNotFound):
		return huma.Error404NotFound("profile not found")
	case errors.Is(err, domain.ErrNetwork):
		applog.LogWarn(ctx, "remote store unavailable", zap.Error(err))
		return huma.ErrorWithHeaders(huma.Error503ServiceUnavailable("remote store unavailable"),
			http.Header{headerRetryAfter: {retryAfterSeconds}})
	default:
		applog.LogError(ctx, "request failed", err, zap.String("category", domain.Category(err)))
		return huma.Error500InternalServerError(msgInternalServer)
	}
}

// NotFoundHandler renders a 404 problem for unmatched routes.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, msgNotFound)
	}
}

// MethodNotAllowedHandler renders a 405 problem listing the allowed methods.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set(headerAllow, strings.Join(allow, ", "))
		}
		writeProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	}
}

// Recoverer turns a panic into a 500 problem. http.ErrAbortHandler is
// re-panicked, and nothing is written once the handler started a response.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				applog.LogError(r.Context(), "panic recovered", fmt.Errorf("%v", rec),
					zap.String("stack", string(debug.Stack())))
				if rw.wroteHeader {
					return
				}
				writeProblem(rw, r, http.StatusInternalServerError, msgInternalServer)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	schema := schemaURL(r)
	body := problem{
		Schema: schema,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	var (
		payload []byte
		err     error
	)
	if acceptsCBOR(r.Header.Get(headerAccept)) {
		w.Header().Set(headerContentType, contentTypeCBOR)
		payload, err = cbor.Marshal(body)
	} else {
		w.Header().Set(headerContentType, contentTypeJSON)
		payload, err = json.Marshal(body)
	}
	if err != nil {
		applog.LogError(r.Context(), "failed to encode problem", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set(headerLink, fmt.Sprintf("<%s>; rel=\"describedBy\"", schema))
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		applog.LogWarn(r.Context(), "failed to write problem", zap.Error(err))
	}
}

func schemaURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if r.Host == "" {
		return schemaPath
	}
	return scheme + "://" + r.Host + schemaPath
}

// acceptsCBOR reports whether the first listed media type is CBOR. Wildcards
// and empty headers fall back to JSON.
func acceptsCBOR(accept string) bool {
	first, _, _ := strings.Cut(accept, ",")
	mediaType, _, _ := strings.Cut(first, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	return mediaType == mediaTypeCBOR || strings.HasSuffix(mediaType, mediaTypeCBORSuffix)
}

// allowedMethods asks chi which methods match the request path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	path := rctx.RoutePath
	if path == "" {
		path = r.URL.Path
	}
	if path == "" {
		path = "/"
	}

	var allowed []string
	for _, method := range []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	} {
		if rctx.Routes.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
