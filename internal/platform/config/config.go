// Package config loads agent settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Cache backends accepted by FITSOCIAL_CACHE_BACKEND.
const (
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

const (
	defaultPort        = "8080"
	defaultCachePrefix = "fitsocial:"
	appDir             = "fitsocial"
)

// Config holds the agent settings.
type Config struct {
	Port string

	FirebaseProjectID            string
	GoogleApplicationCredentials string
	// IDTokenFile holds the device's Firebase ID token.
	IDTokenFile string

	CacheBackend string
	CachePath    string
	RedisURL     string
	CachePrefix  string

	CORSOrigins []string
	LogLevel    string
}

// Load reads envFiles (".env" when none given) into the process environment
// without overriding variables already set, then builds and validates Config.
// Missing env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:                         getenv("PORT", defaultPort),
		FirebaseProjectID:            os.Getenv("FIREBASE_PROJECT_ID"),
		GoogleApplicationCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		IDTokenFile:                  os.Getenv("FITSOCIAL_ID_TOKEN_FILE"),
		CacheBackend:                 strings.ToLower(getenv("FITSOCIAL_CACHE_BACKEND", CacheFile)),
		CachePath:                    os.Getenv("FITSOCIAL_CACHE_PATH"),
		RedisURL:                     os.Getenv("REDIS_URL"),
		CachePrefix:                  getenv("FITSOCIAL_CACHE_PREFIX", defaultCachePrefix),
		CORSOrigins:                  splitList(getenv("FITSOCIAL_CORS_ORIGINS", "*")),
		LogLevel:                     strings.ToLower(os.Getenv("LOG_LEVEL")),
	}

	if cfg.CachePath == "" || cfg.IDTokenFile == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		if cfg.CachePath == "" {
			cfg.CachePath = filepath.Join(dir, appDir, "cache.cbor")
		}
		if cfg.IDTokenFile == "" {
			cfg.IDTokenFile = filepath.Join(dir, appDir, "id_token")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		errs = append(errs, fmt.Errorf("PORT: invalid port %q", c.Port))
	}
	switch c.CacheBackend {
	case CacheFile, CacheMemory:
	case CacheRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL: required for the redis cache backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("FITSOCIAL_CACHE_BACKEND: unknown backend %q", c.CacheBackend))
	}
	if len(c.CORSOrigins) == 0 {
		errs = append(errs, errors.New("FITSOCIAL_CORS_ORIGINS: no origins"))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
