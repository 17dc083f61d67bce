// Package auth resolves the signed-in account from a Firebase ID token held by
// the agent and guards the local API on that session.
package auth

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// Account is the verified Firebase account behind an ID token.
type Account struct {
	UID           string
	Email         string
	EmailVerified bool
}

// authError is a verification failure carrying a log-safe reason code.
type authError struct {
	msg    string
	reason string
}

func (e *authError) Error() string { return e.msg }

// Token verification failures.
var (
	ErrNoToken      error = &authError{"missing authorization header", "no_token"}
	ErrInvalidToken error = &authError{"invalid token", "invalid_token"}
	ErrTokenExpired error = &authError{"token expired", "token_expired"}
	ErrTokenRevoked error = &authError{"token revoked", "token_revoked"}
	ErrUserDisabled error = &authError{"user disabled", "user_disabled"}

	// ErrCertificateFetch is a network failure fetching Google's public keys.
	ErrCertificateFetch error = &authError{"failed to fetch certificates", "certificate_fetch_failed"}
)

// failureReason returns the code to log for err without leaking token contents.
func failureReason(err error) string {
	var ae *authError
	if errors.As(err, &ae) {
		return ae.reason
	}
	return "unknown"
}

// Verifier validates tokens and returns the account they belong to.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Account, error)
}

// sdkErrors maps Admin SDK failures to ours, in priority order. Anything
// unmatched is ErrInvalidToken.
var sdkErrors = []struct {
	match func(error) bool
	err   error
}{
	{fbauth.IsCertificateFetchFailed, ErrCertificateFetch},
	{fbauth.IsIDTokenExpired, ErrTokenExpired},
	{fbauth.IsIDTokenRevoked, ErrTokenRevoked},
	{fbauth.IsUserDisabled, ErrUserDisabled},
}

// FirebaseVerifier checks ID tokens with the Firebase Admin SDK, including
// revocation.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Account, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		for _, m := range sdkErrors {
			if m.match(err) {
				return nil, m.err
			}
		}
		return nil, ErrInvalidToken
	}

	acct := &Account{UID: token.UID}
	acct.Email, _ = token.Claims["email"].(string)
	acct.EmailVerified, _ = token.Claims["email_verified"].(bool)
	return acct, nil
}

// ExtractBearerToken returns the credential of a "Bearer <token>"
// Authorization value. The scheme is case-insensitive.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrInvalidToken
	}
	return token, nil
}

var _ Verifier = (*FirebaseVerifier)(nil)
