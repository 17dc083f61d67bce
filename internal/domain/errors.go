package domain

import "errors"

// Errors returned by the social core. Remote-store failures are classified into
// one of these at the store boundary so callers can match with errors.Is.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrUsernameTaken       = errors.New("username taken")
	ErrInvalidUsername     = errors.New("invalid username")
	ErrAlreadyRegistered   = errors.New("identity already has a profile")
	ErrAlreadyFollowing    = errors.New("already following")
	ErrFollowingNotAllowed = errors.New("following not allowed")
	ErrCannotFollowSelf    = errors.New("cannot follow self")
	ErrUserNotFound        = errors.New("user not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrVersionConflict     = errors.New("profile version conflict")
	ErrInvalidSettings     = errors.New("invalid privacy settings")
	ErrInvalidActivity     = errors.New("invalid activity")

	// ErrActivityConflict means the activity id is already taken by another owner.
	ErrActivityConflict = errors.New("activity id owned by another user")

	// ErrNetwork covers transport failures where a retry may succeed.
	ErrNetwork = errors.New("network error")
	// ErrServer covers remote failures that are not transient.
	ErrServer = errors.New("server error")
	// ErrSchemaMisconfigured means the remote store rejected a query shape,
	// typically a missing composite index.
	ErrSchemaMisconfigured = errors.New("schema misconfigured")
)

// Category returns an audit-safe label for err.
func Category(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, ErrInvalidUsername):
		return "invalid_username"
	case errors.Is(err, ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, ErrAlreadyFollowing):
		return "already_following"
	case errors.Is(err, ErrFollowingNotAllowed):
		return "following_not_allowed"
	case errors.Is(err, ErrCannotFollowSelf):
		return "cannot_follow_self"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrProfileNotFound):
		return "profile_not_found"
	case errors.Is(err, ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, ErrInvalidSettings):
		return "invalid_settings"
	case errors.Is(err, ErrInvalidActivity):
		return "invalid_activity"
	case errors.Is(err, ErrActivityConflict):
		return "activity_conflict"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	case errors.Is(err, ErrSchemaMisconfigured):
		return "schema_misconfigured"
	default:
		return "internal_error"
	}
}
