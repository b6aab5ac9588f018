package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Backends whose settings are
// left empty (database, redis, kafka) are disabled and replaced by in-memory
// fallbacks, which keeps local development and tests dependency-free.
type Server struct {
	Addr           string
	DatabaseURL    string
	RedisURL       string
	KafkaBrokers   []string
	AuditTopic     string
	JWTSigningKey  string
	AccessTokenTTL time.Duration

	// Login lockout tuning.
	LockoutMaxAttempts int
	LockoutWindow      time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("RNGENIUS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "rngenius.audit"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:               addr,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaBrokers:       brokers,
		AuditTopic:         auditTopic,
		JWTSigningKey:      jwtSigningKey,
		AccessTokenTTL:     60 * time.Minute,
		LockoutMaxAttempts: 5,
		LockoutWindow:      15 * time.Minute,
	}
}
