// Package settings loads typed, frozen process configuration from the
// environment exactly once. Every downstream component reads from the
// Settings value returned by Load rather than calling os.Getenv directly —
// grounded on the teacher's single-config-struct-at-startup idiom
// (pkg/core/agent.Config loaded once in cmd/api/main.go) generalized from
// YAML to environment variables per spec §6.
package settings

import (
	"os"
	"strconv"
	"time"

	"aegis/pkg/core/apperr"
)

// AuthMethod selects how Settings.Auth resolves a bearer credential.
type AuthMethod string

const (
	AuthAPIKey AuthMethod = "api_key"
	AuthOAuth  AuthMethod = "oauth"
)

// Settings is the frozen, process-wide configuration object.
type Settings struct {
	AuthMethod AuthMethod

	APIKey string

	OAuthEndpoint     string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthMaxRetries   int
	OAuthRetryDelay   time.Duration

	SSLVerify   bool
	SSLCertPath string

	LogLevel string

	Postgres PostgresConfig

	// ConversationHistoryCap bounds how many trailing messages the
	// normalizer keeps (spec §4.8).
	ConversationHistoryCap int
	// ConversationAllowedRoles is the role allow-list for the normalizer.
	ConversationAllowedRoles []string

	// ETL is keyed by the ETL's env-var prefix (e.g. "CALL_SUMMARY").
	ETL map[string]ETLSettings
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// DSN renders a libpq-style connection string for pgxpool.ParseConfig.
func (p PostgresConfig) DSN() string {
	return "host=" + p.Host +
		" port=" + p.Port +
		" user=" + p.User +
		" password=" + p.Password +
		" dbname=" + p.Database +
		" sslmode=prefer"
}

// ETLSettings holds the per-ETL env-var-driven knobs from spec §6
// (<ETL>_MODEL, <ETL>_TEMPERATURE, <ETL>_MAX_TOKENS, <ETL>_MAX_CONCURRENT).
type ETLSettings struct {
	Model         string
	Temperature   float64
	MaxTokens     int
	MaxConcurrent int
}

var knownETLPrefixes = []string{
	"CALL_SUMMARY", "KEY_THEMES", "CM_READTHROUGH", "WM_READTHROUGH", "BANK_EARNINGS_REPORT",
}

// Load reads and validates process configuration from the environment.
// It never panics; configuration problems come back as *apperr.Error with
// Kind == apperr.KindConfig so the caller can fail the process (or the
// request, for per-request fatal auth config) in its own idiom.
func Load() (*Settings, error) {
	s := &Settings{
		AuthMethod:        AuthMethod(getEnv("AUTH_METHOD", string(AuthAPIKey))),
		APIKey:            os.Getenv("API_KEY"),
		OAuthEndpoint:     os.Getenv("OAUTH_ENDPOINT"),
		OAuthClientID:     os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
		OAuthMaxRetries:   getEnvInt("OAUTH_MAX_RETRIES", 3),
		OAuthRetryDelay:   getEnvDuration("OAUTH_RETRY_DELAY", time.Second),
		SSLVerify:         getEnvBool("SSL_VERIFY", true),
		SSLCertPath:       os.Getenv("SSL_CERT_PATH"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Database: getEnv("POSTGRES_DATABASE", "aegis"),
		},
		ConversationHistoryCap:   getEnvInt("CONVERSATION_HISTORY_CAP", 20),
		ConversationAllowedRoles: []string{"user", "assistant", "system"},
		ETL:                      map[string]ETLSettings{},
	}

	switch s.AuthMethod {
	case AuthAPIKey:
		if s.APIKey == "" {
			return nil, apperr.Config("settings.load", "AUTH_METHOD=api_key but API_KEY is not set", nil)
		}
	case AuthOAuth:
		if s.OAuthEndpoint == "" || s.OAuthClientID == "" || s.OAuthClientSecret == "" {
			return nil, apperr.Config("settings.load", "AUTH_METHOD=oauth requires OAUTH_ENDPOINT, OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET", nil)
		}
	default:
		return nil, apperr.Config("settings.load", "unrecognized AUTH_METHOD: "+string(s.AuthMethod), nil)
	}

	for _, prefix := range knownETLPrefixes {
		s.ETL[prefix] = ETLSettings{
			Model:         os.Getenv(prefix + "_MODEL"),
			Temperature:   getEnvFloat(prefix+"_TEMPERATURE", 0.1),
			MaxTokens:     getEnvInt(prefix+"_MAX_TOKENS", 4096),
			MaxConcurrent: getEnvInt(prefix+"_MAX_CONCURRENT", 5),
		}
	}

	return s, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	// Bare integers are treated as seconds (matches OAUTH_RETRY_DELAY usage
	// in the original source, which stores a plain float number of seconds).
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(n * float64(time.Second))
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
