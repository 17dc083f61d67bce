package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidCursor means a cursor could not be decoded or belongs to another
// resource type.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the position after the last item of a page.
type Cursor struct {
	Type  string
	Value string
}

// Encode returns a URL-safe opaque representation.
func (c Cursor) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(c.Type + ":" + c.Value))
}

// DecodeCursor parses s and checks it was issued for cursorType. An empty s
// is the first page.
func DecodeCursor(s, cursorType string) (Cursor, error) {
	if s == "" {
		return Cursor{Type: cursorType}, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	typ, value, ok := strings.Cut(string(b), ":")
	if !ok || typ != cursorType {
		return Cursor{}, ErrInvalidCursor
	}
	return Cursor{Type: typ, Value: value}, nil
}
