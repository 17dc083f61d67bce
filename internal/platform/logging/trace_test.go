package logging

import "testing"

const sampleTraceparent = "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"

func TestParseTraceParent(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		ok      bool
		sampled bool
	}{
		{name: "sampled", header: sampleTraceparent, ok: true, sampled: true},
		{name: "not sampled", header: "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-00", ok: true},
		{name: "upper case", header: "00-3D23D071B5BFD6579171EFCE907685CB-08F067AA0BA902B7-03", ok: true, sampled: true},
		{name: "empty", header: ""},
		{name: "garbage", header: "trace/span;o=1"},
		{name: "short trace id", header: "00-3d23d071b5bf-08f067aa0ba902b7-01"},
		{name: "non hex", header: "00-3d23d071b5bfd6579171efce907685cz-08f067aa0ba902b7-01"},
		{name: "zero trace id", header: "00-00000000000000000000000000000000-08f067aa0ba902b7-01"},
		{name: "zero span id", header: "00-3d23d071b5bfd6579171efce907685cb-0000000000000000-01"},
		{name: "forbidden version", header: "ff-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, ok := parseTraceParent(tt.header)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if tp.TraceID != "3d23d071b5bfd6579171efce907685cb" || tp.SpanID != "08f067aa0ba902b7" {
				t.Fatalf("unexpected ids: %+v", tp)
			}
			if tp.Sampled != tt.sampled {
				t.Fatalf("sampled = %v, want %v", tp.Sampled, tt.sampled)
			}
		})
	}
}

func TestRequestFields(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		projectID   string
		requestID   string
		wantKeys    []string
		correlation string
	}{
		{
			name:        "trace and request id",
			header:      sampleTraceparent,
			projectID:   "fit-demo",
			requestID:   "req-1",
			wantKeys:    []string{"logging.googleapis.com/trace", "logging.googleapis.com/spanId", "logging.googleapis.com/trace_sampled", "requestId"},
			correlation: "projects/fit-demo/traces/3d23d071b5bfd6579171efce907685cb",
		},
		{
			name:        "no project keeps request id only",
			header:      sampleTraceparent,
			requestID:   "req-2",
			wantKeys:    []string{"requestId"},
			correlation: "req-2",
		},
		{
			name:        "invalid header falls back to request id",
			header:      "bogus",
			projectID:   "fit-demo",
			requestID:   "req-3",
			wantKeys:    []string{"requestId"},
			correlation: "req-3",
		},
		{
			name: "nothing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, correlation := requestFields(tt.header, tt.projectID, tt.requestID)
			if correlation != tt.correlation {
				t.Fatalf("correlation = %q, want %q", correlation, tt.correlation)
			}
			if len(fields) != len(tt.wantKeys) {
				t.Fatalf("got %d fields, want %d: %+v", len(fields), len(tt.wantKeys), fields)
			}
			for i, key := range tt.wantKeys {
				if fields[i].Key != key {
					t.Fatalf("field %d = %s, want %s", i, fields[i].Key, key)
				}
			}
		})
	}
}

func TestTraceFieldsValues(t *testing.T) {
	tp, ok := parseTraceParent(sampleTraceparent)
	if !ok {
		t.Fatal("expected valid traceparent")
	}
	fields := tp.fields("fit-demo")
	if fields[0].String != "projects/fit-demo/traces/3d23d071b5bfd6579171efce907685cb" {
		t.Fatalf("unexpected trace resource: %s", fields[0].String)
	}
	if fields[2].Key != "logging.googleapis.com/trace_sampled" || fields[2].Integer != 1 {
		t.Fatalf("expected sampled flag, got %+v", fields[2])
	}
}
