package constants

import "time"

const (
	UsernameMinLength = 3
	UsernameMaxLength = 20
	PasswordMinLength = 8

	EmailMaxLength       = 254
	EmailLocalMaxLength  = 64
	EmailDomainMaxLength = 253

	PasswordSpecialChars = "@$!%*?&"

	DefaultBcryptCost    = 10
	BcryptMaxInputLength = 72

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultAuthHTTPPort       = "8081"
	DefaultAuthRequestTimeout = 5 * time.Second

	DefaultStoreCircuitBreakerThreshold = 5
	DefaultStoreCircuitBreakerTimeout   = 3 * time.Second
	DefaultStoreCircuitBreakerReset     = 10 * time.Second

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"

const (
	RouteHealth      = "/health"
	RouteMetrics     = "/metrics"
	RouteRegister    = "/api/auth/register"
	RouteUsers       = "/api/users"
	RouteUsersLegacy = "/api/users/getAllUsers"
)
