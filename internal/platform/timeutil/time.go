// Package timeutil fixes the wire format of timestamps: UTC RFC 3339 with
// millisecond precision in both JSON and CBOR responses.
package timeutil

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
)

const (
	// RFC3339Millis is the API timestamp layout, e.g. 2024-01-15T10:30:00.000Z.
	RFC3339Millis = "2006-01-02T15:04:05.000Z"
	// RFC3339Micros is used for log entry timestamps.
	RFC3339Micros = "2006-01-02T15:04:05.000000Z"
)

// Time is a time.Time that always serializes as RFC3339Millis. Decoding
// accepts any RFC 3339 string; null leaves the value unchanged.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time { return Time{Time: t} }

func Now() Time { return Time{Time: time.Now()} }

// String formats t in RFC3339Millis.
func (t Time) String() string {
	return t.UTC().Format(RFC3339Millis)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &time.ParseError{Layout: time.RFC3339, Value: s, Message: ": expected a JSON string"}
	}
	return t.parse(s[1 : len(s)-1])
}

// MarshalCBOR writes a plain text string rather than a tagged epoch so CBOR
// and JSON clients see the same value. Without it the promoted
// time.Time.MarshalBinary would be encoded as an opaque byte string.
func (t Time) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(t.String())
}

func (t *Time) UnmarshalCBOR(data []byte) error {
	if len(data) == 1 && (data[0] == 0xf6 || data[0] == 0xf7) {
		return nil
	}
	var s string
	if err := cbor.Unmarshal(data, &s); err == nil {
		return t.parse(s)
	}
	var v time.Time
	if err := cbor.Unmarshal(data, &v); err != nil {
		return err
	}
	t.Time = v
	return nil
}

// Schema documents Time as a date-time string in the OpenAPI document.
func (Time) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{Type: huma.TypeString, Format: "date-time"}
}

func (t *Time) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
