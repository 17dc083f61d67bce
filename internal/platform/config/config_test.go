package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

var configKeys = []string{
	"PORT",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FITSOCIAL_ID_TOKEN_FILE",
	"FITSOCIAL_CACHE_BACKEND",
	"FITSOCIAL_CACHE_PATH",
	"REDIS_URL",
	"FITSOCIAL_CACHE_PREFIX",
	"FITSOCIAL_CORS_ORIGINS",
	"LOG_LEVEL",
}

// clearEnv blanks every key Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unsetenv %s: %v", k, err)
		}
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.CacheBackend != CacheFile {
		t.Errorf("expected file backend, got %s", cfg.CacheBackend)
	}
	if cfg.CachePrefix != "fitsocial:" {
		t.Errorf("unexpected prefix %q", cfg.CachePrefix)
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"*"}) {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
	if !strings.HasSuffix(cfg.CachePath, filepath.Join("fitsocial", "cache.cbor")) {
		t.Errorf("unexpected cache path %s", cfg.CachePath)
	}
	if !strings.HasSuffix(cfg.IDTokenFile, filepath.Join("fitsocial", "id_token")) {
		t.Errorf("unexpected token path %s", cfg.IDTokenFile)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("FIREBASE_PROJECT_ID", "demo-fitsocial")
	t.Setenv("FITSOCIAL_CACHE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("FITSOCIAL_CORS_ORIGINS", "http://localhost:5173, http://127.0.0.1:5173,")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.FirebaseProjectID != "demo-fitsocial" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.CacheBackend != CacheRedis || cfg.RedisURL == "" {
		t.Errorf("expected redis backend, got %+v", cfg)
	}
	if want := []string{"http://localhost:5173", "http://127.0.0.1:5173"}; !slices.Equal(cfg.CORSOrigins, want) {
		t.Errorf("expected %v, got %v", want, cfg.CORSOrigins)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected lowercased level, got %q", cfg.LogLevel)
	}
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=7000\nFITSOCIAL_CACHE_PREFIX=test:\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("PORT", "7100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7100" {
		t.Errorf("expected environment to win, got %s", cfg.Port)
	}
	if cfg.CachePrefix != "test:" {
		t.Errorf("expected prefix from env file, got %q", cfg.CachePrefix)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "bad port", env: map[string]string{"PORT": "http"}, want: "PORT"},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}, want: "PORT"},
		{name: "unknown backend", env: map[string]string{"FITSOCIAL_CACHE_BACKEND": "sqlite"}, want: "FITSOCIAL_CACHE_BACKEND"},
		{name: "redis without url", env: map[string]string{"FITSOCIAL_CACHE_BACKEND": "redis"}, want: "REDIS_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(noEnvFile(t))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := &Config{Port: "0", CacheBackend: "nope"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"PORT", "FITSOCIAL_CACHE_BACKEND", "FITSOCIAL_CORS_ORIGINS"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %s in %v", want, err)
		}
	}
}
