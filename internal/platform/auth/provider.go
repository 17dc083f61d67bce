package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/janisto/fitsocial/internal/domain"
	applog "github.com/janisto/fitsocial/internal/platform/logging"
)

// Provider answers "who is signed in on this device" by verifying the stored
// ID token. Failures are reported as domain errors: ErrNotAuthenticated for
// any token problem, ErrNetwork when the verification keys cannot be fetched.
type Provider struct {
	tokens   TokenStore
	verifier Verifier
}

// NewProvider creates a provider over tokens and verifier.
func NewProvider(tokens TokenStore, verifier Verifier) *Provider {
	return &Provider{tokens: tokens, verifier: verifier}
}

// CurrentIdentity returns the UID of the signed-in account.
func (p *Provider) CurrentIdentity(ctx context.Context) (string, error) {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return "", p.classify(ctx, err)
	}
	user, err := p.verifier.Verify(ctx, token)
	if err != nil {
		return "", p.classify(ctx, err)
	}
	if user == nil || user.UID == "" {
		return "", fmt.Errorf("%w: token has no subject", domain.ErrNotAuthenticated)
	}
	return user.UID, nil
}

func (p *Provider) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	applog.LogWarn(ctx, "identity verification failed", zap.String("reason", failureReason(err)))
	if errors.Is(err, ErrCertificateFetch) {
		return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrNotAuthenticated, err)
}
