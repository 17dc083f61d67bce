// Package testutil connects integration tests to the Firebase emulator suite
// and other local services. Tests skip when the service is not running.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"testing"
	"time"
)

// ProjectID uses the demo- prefix, which the emulators accept without a real
// project behind it.
const ProjectID = "demo-fitsocial"

var (
	AuthEmulatorHost      = envOr("FIREBASE_AUTH_EMULATOR_HOST", "127.0.0.1:7110")
	FirestoreEmulatorHost = envOr("FIRESTORE_EMULATOR_HOST", "127.0.0.1:7130")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SkipIfUnreachable skips the test when nothing accepts TCP connections on host.
func SkipIfUnreachable(t *testing.T, host string) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", host, 100*time.Millisecond)
	if err != nil {
		t.Skipf("%s not reachable", host)
	}
	_ = conn.Close()
}

// pointSDKs sets the variables the Firebase and Firestore SDKs read. Both are
// set so a Firebase app can build every client without real credentials.
func pointSDKs(t *testing.T) {
	t.Setenv("FIREBASE_AUTH_EMULATOR_HOST", AuthEmulatorHost)
	t.Setenv("FIRESTORE_EMULATOR_HOST", FirestoreEmulatorHost)
}

// RequireFirestoreEmulator skips without the Firestore emulator, points the
// SDK at it and wipes its documents before and after the test.
func RequireFirestoreEmulator(t *testing.T) {
	t.Helper()
	SkipIfUnreachable(t, FirestoreEmulatorHost)
	pointSDKs(t)
	reset := func() {
		wipe(t, "http://"+FirestoreEmulatorHost+"/emulator/v1/projects/"+ProjectID+"/databases/(default)/documents")
	}
	reset()
	t.Cleanup(reset)
}

// RequireAuthEmulator is RequireFirestoreEmulator for Auth accounts.
func RequireAuthEmulator(t *testing.T) {
	t.Helper()
	SkipIfUnreachable(t, AuthEmulatorHost)
	pointSDKs(t)
	reset := func() {
		wipe(t, "http://"+AuthEmulatorHost+"/emulator/v1/projects/"+ProjectID+"/accounts")
	}
	reset()
	t.Cleanup(reset)
}

func wipe(t *testing.T, url string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("build reset request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("reset emulator: %v", err)
	}
	_ = resp.Body.Close()
}

// EmulatorUser is an account created in the Auth emulator.
type EmulatorUser struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

// SignUp creates an email/password account and returns its fresh ID token.
func SignUp(t *testing.T, email, password string) EmulatorUser {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		t.Fatalf("encode sign-up: %v", err)
	}
	url := "http://" + AuthEmulatorHost + "/identitytoolkit.googleapis.com/v1/accounts:signUp?key=emulator"
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build sign-up request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign up %s: status %d", email, resp.StatusCode)
	}

	var user EmulatorUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode sign-up: %v", err)
	}
	return user
}
