package auth

import (
	"context"
	"sync"
)

// MockVerifier provides fake token verification for tests. Tokens maps a raw
// token to its user; when Tokens is nil every token verifies as User.
type MockVerifier struct {
	User   *Account
	Tokens map[string]*Account
	Error  error

	mu    sync.Mutex
	calls int
}

// Verify returns the configured user or error.
func (m *MockVerifier) Verify(_ context.Context, token string) (*Account, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Error != nil {
		return nil, m.Error
	}
	if m.Tokens != nil {
		u, ok := m.Tokens[token]
		if !ok {
			return nil, ErrInvalidToken
		}
		return u, nil
	}
	return m.User, nil
}

// Calls reports how many times Verify ran.
func (m *MockVerifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// TestUser returns a standard test user.
func TestUser() *Account {
	return &Account{
		UID:           "test-user-123",
		Email:         "test@example.com",
		EmailVerified: true,
	}
}

// StaticIdentity is an IdentitySource returning a fixed identity or error.
type StaticIdentity struct {
	ID    string
	Error error
}

func (s StaticIdentity) Resolve(context.Context) (string, error) {
	if s.Error != nil {
		return "", s.Error
	}
	return s.ID, nil
}

var (
	_ Verifier       = (*MockVerifier)(nil)
	_ IdentitySource = StaticIdentity{}
)
