package config

import (
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "JWT_EXPIRE_HOURS", "VULN_SQLI", "VULN_XSS", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "3000" {
		t.Errorf("Port: got %q, want 3000", cfg.Port)
	}
	if cfg.JWTExpireHours != 2 {
		t.Errorf("JWTExpireHours: got %d, want 2", cfg.JWTExpireHours)
	}
	if cfg.Flags != (Flags{}) {
		t.Errorf("Flags: got %+v, want all safe", cfg.Flags)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"http://localhost:8080"}) {
		t.Errorf("CORSAllowedOrigins: got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFlags_OnlyExactTrue(t *testing.T) {
	t.Setenv("VULN_SQLI", "true")
	t.Setenv("VULN_XSS", "TRUE")
	t.Setenv("VULN_CSRF", "1")
	t.Setenv("VULN_COOKIE_FLAGS", "true")
	t.Setenv("VULN_HEADERS", "")
	t.Setenv("VULN_DEBUG_ROUTES", "true")
	t.Setenv("VULN_AUTH_WEAK", "yes")

	want := Flags{SQLi: true, CookieFlags: true, DebugRoutes: true}
	if got := LoadFlags(); got != want {
		t.Errorf("LoadFlags: got %+v, want %+v", got, want)
	}
}

func TestParseCORSOrigins(t *testing.T) {
	got := parseCORSOrigins(" http://a.test , ,http://b.test")
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseCORSOrigins: got %v, want %v", got, want)
	}
	if parseCORSOrigins("") != nil {
		t.Error("expected nil for empty input")
	}
}

func TestValidate(t *testing.T) {
	dev := Config{Env: "dev", JWTSecret: defaultJWTSecret, SessionSecret: defaultSessionSecret}
	if err := dev.Validate(); err != nil {
		t.Errorf("dev config should validate: %v", err)
	}

	prod := Config{Env: "prod", JWTSecret: defaultJWTSecret, SessionSecret: "s3"}
	if err := prod.Validate(); err == nil {
		t.Error("expected error for default JWT secret in prod")
	}

	prod.JWTSecret = "real"
	prod.SessionSecret = defaultSessionSecret
	if err := prod.Validate(); err == nil {
		t.Error("expected error for default session secret in prod")
	}

	prod.SessionSecret = "real-too"
	if err := prod.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadWeb(t *testing.T) {
	t.Setenv("WEB_PORT", "")
	t.Setenv("VULN_BLOG_API_URL", "http://api.test")
	t.Setenv("VULN_XSS_SINK", "true")
	t.Setenv("VULN_RAW_QUERY", "")
	t.Setenv("VULN_OPEN_REDIRECT", "false")

	want := WebConfig{Port: "8080", APIURL: "http://api.test", XSSSink: true}
	if got := LoadWeb(); got != want {
		t.Errorf("LoadWeb: got %+v, want %+v", got, want)
	}
}
