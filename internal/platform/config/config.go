package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RulesetCacheTTL bounds how stale a cached ruleset read may be. Writes
// invalidate the cache synchronously, so this only covers external mutations.
var RulesetCacheTTL = 5 * time.Minute

// Server captures process-level configuration. Domain settings that operators
// tune at runtime (lists, flags, limits) live in the ruleset store instead.
type Server struct {
	Addr        string
	Environment string
	DebugLog    bool

	DatabaseURL string
	RedisURL    string

	KafkaBrokers    string
	AuditKafkaTopic string

	JWTSigningKey string

	RulesetCacheTTL time.Duration

	// RequiredCheckoutFields mirrors the host checkout configuration and
	// decides which identity fields participate in cross-order matching.
	RequiredCheckoutFields []string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("FRAUDGATE_ADDR", ":8080"),
		Environment:     envOr("FRAUDGATE_ENV", "development"),
		DebugLog:        os.Getenv("FRAUDGATE_DEBUG_LOG") == "true",
		DatabaseURL:     os.Getenv("FRAUDGATE_DATABASE_URL"),
		RedisURL:        os.Getenv("FRAUDGATE_REDIS_URL"),
		KafkaBrokers:    os.Getenv("FRAUDGATE_KAFKA_BROKERS"),
		AuditKafkaTopic: envOr("FRAUDGATE_AUDIT_TOPIC", "fraudgate.blocked-customers"),
		JWTSigningKey:   envOr("FRAUDGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		RulesetCacheTTL: RulesetCacheTTL,
	}

	if ttl := os.Getenv("FRAUDGATE_RULESET_CACHE_TTL"); ttl != "" {
		if duration, err := time.ParseDuration(ttl); err == nil {
			cfg.RulesetCacheTTL = duration
		}
	}

	cfg.RequiredCheckoutFields = splitList(envOr(
		"FRAUDGATE_REQUIRED_CHECKOUT_FIELDS",
		"billing_email,billing_phone",
	))

	return cfg
}

// IntOr reads an integer environment variable with a fallback.
func IntOr(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
