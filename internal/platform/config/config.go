package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything main needs to wire the service. Optional
// backends (Postgres, Redis, Kafka) fall back to in-process substitutes when
// their settings are empty, which keeps local runs dependency-free.
type Config struct {
	Addr          string
	JWTSigningKey string

	PostgresDSN string

	RedisURL        string
	ConsentCacheTTL time.Duration

	KafkaBrokers    []string
	KafkaAuditTopic string

	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("MEDGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development fallback; must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	cacheTTL := 30 * time.Second
	if raw := os.Getenv("CONSENT_CACHE_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cacheTTL = d
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "medgate.audit"
	}

	return Config{
		Addr:            addr,
		JWTSigningKey:   jwtSigningKey,
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ConsentCacheTTL: cacheTTL,
		KafkaBrokers:    brokers,
		KafkaAuditTopic: topic,
		ShutdownTimeout: 10 * time.Second,
	}
}
