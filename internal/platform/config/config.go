package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the admin console server needs from the
// environment so main stays lean.
type Config struct {
	Addr             string
	DatabaseURL      string
	RedisURL         string
	KafkaBrokers     []string
	AuditTopic       string
	AdminJWTSecret   string
	ResolverCacheTTL time.Duration
	AuditListLimit   int
}

// FromEnv builds a Config from environment variables with development
// defaults. Kafka and redis are optional; leaving their settings empty
// disables fan-out and identity caching respectively.
func FromEnv() Config {
	cfg := Config{
		Addr:             getenv("ADMIN_CONSOLE_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		AuditTopic:       getenv("AUDIT_TOPIC", "tapir.admin-audit"),
		AdminJWTSecret:   getenv("ADMIN_JWT_SECRET", "dev-secret-change-in-production"),
		ResolverCacheTTL: getduration("RESOLVER_CACHE_TTL", 5*time.Minute),
		AuditListLimit:   getint("AUDIT_LIST_LIMIT", 100),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
