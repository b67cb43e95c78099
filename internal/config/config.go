package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultSessionSecret = "secret"
	defaultJWTSecret     = "dev_secret_change_me"
)

// Flags selects safe (false) or deliberately unsafe (true) behaviour per concern.
// Every flag is read once at start-up; nothing re-reads the environment per request.
type Flags struct {
	SQLi        bool // VULN_SQLI: concatenate user input into query text
	XSS         bool // VULN_XSS: skip sanitization and reflect input unescaped
	CSRF        bool // VULN_CSRF: no CSRF token required
	CookieFlags bool // VULN_COOKIE_FLAGS: cookies without HttpOnly/Secure/SameSite
	Headers     bool // VULN_HEADERS: identifying header instead of CSP/frame policy
	DebugRoutes bool // VULN_DEBUG_ROUTES: mount /debug/*
	AuthWeak    bool // VULN_AUTH_WEAK: no minimum password length
}

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// SessionSecret keys the CSRF token HMAC.
	SessionSecret string
	JWTSecret     string

	// Env is "dev" (default) or "prod". When "prod", secrets must be set and not the defaults.
	Env string

	// JWTExpireHours is the token lifetime in hours (default 2). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int
	// SessionTTLHours is the cookie session lifetime in hours (default 24).
	SessionTTLHours int
	// SessionPurgeSpec is the cron spec for deleting expired sessions.
	SessionPurgeSpec string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is the list of origins allowed to make credentialed requests.
	CORSAllowedOrigins []string

	// DebugRoot is the directory exposed by the debug file routes.
	DebugRoot string

	Flags Flags
}

func Load() Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "3000"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "demoapp"),
		DBUser: getEnv("DB_USER", "demo"),
		DBPass: getEnv("DB_PASSWORD", "demo"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		SessionSecret: getEnv("SESSION_SECRET", defaultSessionSecret),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		Env:           getEnv("ENV", "dev"),

		JWTExpireHours:   getEnvInt("JWT_EXPIRE_HOURS", 2),
		SessionTTLHours:  getEnvInt("SESSION_TTL_HOURS", 24),
		SessionPurgeSpec: getEnv("SESSION_PURGE_SPEC", "@every 10m"),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8080")),

		DebugRoot: getEnv("DEBUG_ROOT", "."),

		Flags: LoadFlags(),
	}
}

// LoadFlags reads the VULN_* switches. Only the exact value "true" enables a switch.
func LoadFlags() Flags {
	return Flags{
		SQLi:        getEnvBool("VULN_SQLI"),
		XSS:         getEnvBool("VULN_XSS"),
		CSRF:        getEnvBool("VULN_CSRF"),
		CookieFlags: getEnvBool("VULN_COOKIE_FLAGS"),
		Headers:     getEnvBool("VULN_HEADERS"),
		DebugRoutes: getEnvBool("VULN_DEBUG_ROUTES"),
		AuthWeak:    getEnvBool("VULN_AUTH_WEAK"),
	}
}

// WebConfig configures the server-rendered web client.
type WebConfig struct {
	Port   string
	APIURL string

	XSSSink      bool // VULN_XSS_SINK: render post and comment bodies as raw HTML
	RawQuery     bool // VULN_RAW_QUERY: forward the search term without URL encoding
	OpenRedirect bool // VULN_OPEN_REDIRECT: follow any login "next" target
}

// LoadWeb reads the web client settings.
func LoadWeb() WebConfig {
	_ = godotenv.Load()

	return WebConfig{
		Port:         getEnv("WEB_PORT", "8080"),
		APIURL:       getEnv("VULN_BLOG_API_URL", "http://localhost:3000"),
		XSSSink:      getEnvBool("VULN_XSS_SINK"),
		RawQuery:     getEnvBool("VULN_RAW_QUERY"),
		OpenRedirect: getEnvBool("VULN_OPEN_REDIRECT"),
	}
}

// TLSEnabled reports whether both certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Validate rejects configurations that must not run in production.
func (c Config) Validate() error {
	if c.Env != "prod" {
		return nil
	}
	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in prod")
	}
	if c.SessionSecret == "" || c.SessionSecret == defaultSessionSecret {
		return errors.New("SESSION_SECRET must be set in prod")
	}
	return nil
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvBool(key string) bool {
	return os.Getenv(key) == "true"
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
