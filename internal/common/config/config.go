package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/rhythmix/backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/rhythmix/backend/internal/common/errors"
)

type StoreBackend string

const (
	StoreBackendMemory   StoreBackend = "memory"
	StoreBackendPostgres StoreBackend = "postgres"
)

type AuthConfig struct {
	HTTPPort                string
	StoreBackend            StoreBackend
	DatabaseURL             string
	BcryptCost              int
	HashConcurrency         int
	RequestTimeout          time.Duration
	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

func LoadAuthConfig() (AuthConfig, error) {
	backend := StoreBackend(strings.ToLower(getEnv("STORE_BACKEND", string(StoreBackendMemory))))
	if backend != StoreBackendMemory && backend != StoreBackendPostgres {
		return AuthConfig{}, fmt.Errorf("%w: STORE_BACKEND=%q", commonerrors.ErrInvalidConfig, backend)
	}

	var databaseURL string
	if backend == StoreBackendPostgres {
		url, err := mustEnv("DATABASE_URL")
		if err != nil {
			return AuthConfig{}, err
		}
		databaseURL = url
	}

	cost, err := parseIntEnv("BCRYPT_COST", constants.DefaultBcryptCost)
	if err != nil {
		return AuthConfig{}, err
	}
	if err := validateBcryptCost(cost); err != nil {
		return AuthConfig{}, err
	}

	hashConcurrency, err := parseIntEnv("HASH_CONCURRENCY", runtime.NumCPU())
	if err != nil {
		return AuthConfig{}, err
	}
	if hashConcurrency < 1 {
		return AuthConfig{}, fmt.Errorf("%w: HASH_CONCURRENCY must be positive, got %d", commonerrors.ErrInvalidConfig, hashConcurrency)
	}

	threshold, err := parseIntEnv("STORE_CB_THRESHOLD", constants.DefaultStoreCircuitBreakerThreshold)
	if err != nil {
		return AuthConfig{}, err
	}

	requestTimeout, err := getDurationEnv("AUTH_REQUEST_TIMEOUT", constants.DefaultAuthRequestTimeout)
	if err != nil {
		return AuthConfig{}, err
	}
	if requestTimeout == 0 {
		return AuthConfig{}, fmt.Errorf("%w: AUTH_REQUEST_TIMEOUT must be positive", commonerrors.ErrInvalidConfig)
	}

	cbTimeout, err := getDurationEnv("STORE_CB_TIMEOUT", constants.DefaultStoreCircuitBreakerTimeout)
	if err != nil {
		return AuthConfig{}, err
	}

	cbReset, err := getDurationEnv("STORE_CB_RESET", constants.DefaultStoreCircuitBreakerReset)
	if err != nil {
		return AuthConfig{}, err
	}

	return AuthConfig{
		HTTPPort:                getEnv("AUTH_HTTP_PORT", constants.DefaultAuthHTTPPort),
		StoreBackend:            backend,
		DatabaseURL:             databaseURL,
		BcryptCost:              cost,
		HashConcurrency:         hashConcurrency,
		RequestTimeout:          requestTimeout,
		CircuitBreakerThreshold: int32(threshold),
		CircuitBreakerTimeout:   cbTimeout,
		CircuitBreakerReset:     cbReset,
	}, nil
}

func validateBcryptCost(cost int) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("%w: BCRYPT_COST must be within [%d, %d], got %d",
			commonerrors.ErrInvalidConfig, bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

// getDurationEnv parses a Go duration such as "500ms". Malformed and
// negative values are configuration errors.
func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s=%q", commonerrors.ErrInvalidConfig, key, v)
	}
	return d, nil
}

// parseIntEnv returns an error for a malformed value instead of the fallback.
func parseIntEnv(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", commonerrors.ErrInvalidConfig, key, v)
	}
	return i, nil
}
