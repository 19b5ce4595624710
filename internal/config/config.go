// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty keeps sessions and audit logs in memory.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// SessionTokenSecret is the HS256 secret for session bearer tokens, inline or "file:<path>".
	SessionTokenSecret string `mapstructure:"SESSION_TOKEN_SECRET"`
	// IPHashSalt keys the one-way hash of client addresses and user agents.
	IPHashSalt string `mapstructure:"IP_HASH_SALT"`
	// TokenIssuer is the iss claim of session tokens.
	TokenIssuer string `mapstructure:"TOKEN_ISSUER"`
	// TokenAudience is the aud claim of session tokens.
	TokenAudience string `mapstructure:"TOKEN_AUDIENCE"`
	// SessionTTLRaw is the absolute session lifetime (e.g. "168h").
	SessionTTLRaw string `mapstructure:"SESSION_TTL"`
	// MaxSessionsPerIP caps live sessions per IP hash.
	MaxSessionsPerIP int `mapstructure:"MAX_SESSIONS_PER_IP"`
	// RateLimitWindowRaw is the fixed rate-limit window (e.g. "15m").
	RateLimitWindowRaw string `mapstructure:"RATE_LIMIT_WINDOW"`
	// RateLimitMax is the number of attempts allowed per IP hash in one window.
	RateLimitMax int `mapstructure:"RATE_LIMIT_MAX"`
	// SessionSweepIntervalRaw is how often expired sessions and the IP index are swept (e.g. "1h").
	SessionSweepIntervalRaw string `mapstructure:"SESSION_SWEEP_INTERVAL"`

	// Behavior thresholds.
	BanThreshold               int `mapstructure:"BAN_THRESHOLD"`
	FingerprintMismatchPenalty int `mapstructure:"FINGERPRINT_MISMATCH_PENALTY"`
	RapidPostingMinPosts       int `mapstructure:"RAPID_POSTING_MIN_POSTS"`
	RapidPostingReplyRatio     int `mapstructure:"RAPID_POSTING_REPLY_RATIO"`
	RapidPostingPenalty        int `mapstructure:"RAPID_POSTING_PENALTY"`
	HighReportingMinReports    int `mapstructure:"HIGH_REPORTING_MIN_REPORTS"`
	HighReportingPenalty       int `mapstructure:"HIGH_REPORTING_PENALTY"`
	ComplianceMaxWarnings      int `mapstructure:"COMPLIANCE_MAX_WARNINGS"`
	ComplianceViolationPenalty int `mapstructure:"COMPLIANCE_VIOLATION_PENALTY"`
	PostsPerHourLimit          int `mapstructure:"POSTS_PER_HOUR_LIMIT"`
	PostingFrequencyPenalty    int `mapstructure:"POSTING_FREQUENCY_PENALTY"`
	ExcessiveReportingPenalty  int `mapstructure:"EXCESSIVE_REPORTING_PENALTY"`

	// Telemetry (optional). When Kafka brokers are set, moderation events go to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for moderation events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// OTLPEndpoint is the OTLP gRPC collector; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext to an https collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTel service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// LokiTenantID is sent as X-Scope-OrgID for multi-tenant Loki; empty omits the header.
	LokiTenantID string `mapstructure:"LOKI_TENANT_ID"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

var defaults = map[string]any{
	"GRPC_ADDR":                    ":8080",
	"DATABASE_URL":                 "",
	"APP_ENV":                      "",
	"SESSION_TOKEN_SECRET":         "",
	"IP_HASH_SALT":                 "",
	"TOKEN_ISSUER":                 "juribank-anon",
	"TOKEN_AUDIENCE":               "juribank-community",
	"SESSION_TTL":                  "168h",
	"MAX_SESSIONS_PER_IP":          10,
	"RATE_LIMIT_WINDOW":            "15m",
	"RATE_LIMIT_MAX":               100,
	"SESSION_SWEEP_INTERVAL":       "1h",
	"BAN_THRESHOLD":                100,
	"FINGERPRINT_MISMATCH_PENALTY": 10,
	"RAPID_POSTING_MIN_POSTS":      10,
	"RAPID_POSTING_REPLY_RATIO":    3,
	"RAPID_POSTING_PENALTY":        5,
	"HIGH_REPORTING_MIN_REPORTS":   5,
	"HIGH_REPORTING_PENALTY":       3,
	"COMPLIANCE_MAX_WARNINGS":      3,
	"COMPLIANCE_VIOLATION_PENALTY": 10,
	"POSTS_PER_HOUR_LIMIT":         10,
	"POSTING_FREQUENCY_PENALTY":    5,
	"EXCESSIVE_REPORTING_PENALTY":  3,
	"KAFKA_BROKERS":                "",
	"TELEMETRY_KAFKA_TOPIC":        "juribank-moderation",
	"OTEL_EXPORTER_OTLP_ENDPOINT":  "",
	"OTEL_EXPORTER_OTLP_INSECURE":  false,
	"OTEL_SERVICE_NAME":            "juribank-anon-sessions",
	"LOKI_URL":                     "",
	"LOKI_TENANT_ID":               "",
	"KAFKA_GROUP_ID":               "juribank-moderation-worker",
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Secrets are not required here;
// the server checks them with RequireSessionSecrets.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GRPCAddr == "" {
		return errors.New("config: GRPC_ADDR must be set")
	}
	if c.MaxSessionsPerIP < 1 {
		return errors.New("config: MAX_SESSIONS_PER_IP must be at least 1")
	}
	if c.RateLimitMax < 1 {
		return errors.New("config: RATE_LIMIT_MAX must be at least 1")
	}
	if c.BanThreshold < 1 {
		return errors.New("config: BAN_THRESHOLD must be at least 1")
	}
	for name, v := range map[string]int{
		"FINGERPRINT_MISMATCH_PENALTY": c.FingerprintMismatchPenalty,
		"RAPID_POSTING_PENALTY":        c.RapidPostingPenalty,
		"HIGH_REPORTING_PENALTY":       c.HighReportingPenalty,
		"COMPLIANCE_VIOLATION_PENALTY": c.ComplianceViolationPenalty,
		"POSTING_FREQUENCY_PENALTY":    c.PostingFrequencyPenalty,
		"EXCESSIVE_REPORTING_PENALTY":  c.ExcessiveReportingPenalty,
	} {
		if v < 0 {
			return fmt.Errorf("config: %s must not be negative", name)
		}
	}
	return nil
}

// RequireSessionSecrets reports an error when the token secret or IP hash salt is missing.
// In production the salt must also be at least 16 characters.
func (c *Config) RequireSessionSecrets() error {
	if strings.TrimSpace(c.SessionTokenSecret) == "" {
		return errors.New("config: SESSION_TOKEN_SECRET must be set")
	}
	if c.IPHashSalt == "" {
		return errors.New("config: IP_HASH_SALT must be set")
	}
	if c.Env == "production" && len(c.IPHashSalt) < 16 {
		return errors.New("config: IP_HASH_SALT must be at least 16 characters when APP_ENV=production")
	}
	return nil
}

// SessionTTL parses SessionTTLRaw. Returns 168h if unset or invalid.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.SessionTTLRaw, 168*time.Hour)
}

// RateLimitWindow parses RateLimitWindowRaw. Returns 15m if unset or invalid.
func (c *Config) RateLimitWindow() time.Duration {
	return parseDuration(c.RateLimitWindowRaw, 15*time.Minute)
}

// SessionSweepInterval parses SessionSweepIntervalRaw. Returns 1h if unset or invalid.
func (c *Config) SessionSweepInterval() time.Duration {
	return parseDuration(c.SessionSweepIntervalRaw, time.Hour)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if Kafka is enabled (non-empty list) and to create the producer and consumer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
