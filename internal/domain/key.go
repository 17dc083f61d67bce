package domain

import "strings"

// maxKeyBytes is the remote store's limit on a record key.
const maxKeyBytes = 1500

// ValidKey reports whether s can name a remote record. The store rejects
// keys containing a path separator, the names "." and "..", and names
// wrapped in double underscores.
func ValidKey(s string) bool {
	switch {
	case s == "" || len(s) > maxKeyBytes:
		return false
	case s == "." || s == "..":
		return false
	case strings.Contains(s, "/"):
		return false
	case len(s) >= 4 && strings.HasPrefix(s, "__") && strings.HasSuffix(s, "__"):
		return false
	}
	return true
}
