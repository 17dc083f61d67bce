package logging

import (
	"strings"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// traceParent is a parsed W3C traceparent header:
// {version}-{trace-id}-{parent-id}-{trace-flags}.
type traceParent struct {
	TraceID string
	SpanID  string
	Sampled bool
}

// parseTraceParent accepts version 00 headers and rejects the all-zero ids
// the W3C format reserves as invalid.
func parseTraceParent(header string) (traceParent, bool) {
	parts := strings.Split(strings.TrimSpace(header), "-")
	if len(parts) != 4 {
		return traceParent{}, false
	}
	version, traceID, spanID, flags := parts[0], parts[1], parts[2], parts[3]
	if !isHex(version, 2) || strings.EqualFold(version, "ff") {
		return traceParent{}, false
	}
	if !isHex(traceID, 32) || !isHex(spanID, 16) || !isHex(flags, 2) {
		return traceParent{}, false
	}
	if strings.Trim(traceID, "0") == "" || strings.Trim(spanID, "0") == "" {
		return traceParent{}, false
	}
	return traceParent{
		TraceID: strings.ToLower(traceID),
		SpanID:  strings.ToLower(spanID),
		Sampled: hexNibble(flags[1])&1 == 1,
	}, true
}

// resource is the Cloud Logging trace name for the given project.
func (t traceParent) resource(projectID string) string {
	return "projects/" + projectID + "/traces/" + t.TraceID
}

func (t traceParent) fields(projectID string) []zap.Field {
	return []zap.Field{
		zap.String("logging.googleapis.com/trace", t.resource(projectID)),
		zap.String("logging.googleapis.com/spanId", t.SpanID),
		zap.Bool("logging.googleapis.com/trace_sampled", t.Sampled),
	}
}

// requestFields builds the per-request logger fields. Trace fields need a
// project ID to form a resource name; without one only the request ID is kept.
func requestFields(header, projectID, requestID string) (fields []zap.Field, correlationID string) {
	if projectID != "" {
		if tp, ok := parseTraceParent(header); ok {
			fields = tp.fields(projectID)
			correlationID = tp.resource(projectID)
		}
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
		if correlationID == "" {
			correlationID = requestID
		}
	}
	return fields, correlationID
}

func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if hexNibble(s[i]) > 15 {
			return false
		}
	}
	return true
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0xff
}
