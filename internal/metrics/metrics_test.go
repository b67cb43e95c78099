package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/api/posts/12":          "/api/posts/{id}",
		"/api/posts/12/comments": "/api/posts/{id}/comments",
		"/api/posts/{id}":        "/api/posts/{id}",
		"/health":                "/health",
	}
	for in, want := range tests {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestRecordLogin(t *testing.T) {
	before := testutil.ToFloat64(LoginAttempts.WithLabelValues("token", "failure"))
	RecordLogin("token", false)
	if got := testutil.ToFloat64(LoginAttempts.WithLabelValues("token", "failure")); got != before+1 {
		t.Errorf("login failures: got %v, want %v", got, before+1)
	}
}

func TestAddSessionsPurged_IgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(SessionsPurged)
	AddSessionsPurged(0)
	AddSessionsPurged(2)
	if got := testutil.ToFloat64(SessionsPurged); got != before+2 {
		t.Errorf("purged: got %v, want %v", got, before+2)
	}
}
