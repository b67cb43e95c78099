package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// csrfFirstContact performs a GET and returns the secret cookie and token issued.
func csrfFirstContact(t *testing.T, c *CSRF) (*http.Cookie, string) {
	t.Helper()
	var token string
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = CSRFToken(r.Context())
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/csrf", nil))

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CSRFCookieName {
		t.Fatalf("expected csrf cookie, got %v", cookies)
	}
	if token == "" {
		t.Fatal("expected token in context")
	}
	return cookies[0], token
}

func TestCSRF_RejectsPostWithoutToken(t *testing.T) {
	c := NewCSRF("key", CookiePolicy{}, true)
	secret, _ := csrfFirstContact(t, c)

	req := httptest.NewRequest("POST", "/api/posts", strings.NewReader("{}"))
	req.AddCookie(secret)
	rr := httptest.NewRecorder()
	c.Middleware(okHandler).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestCSRF_AcceptsMatchingHeader(t *testing.T) {
	c := NewCSRF("key", CookiePolicy{}, true)
	secret, token := csrfFirstContact(t, c)

	req := httptest.NewRequest("POST", "/api/posts", strings.NewReader("{}"))
	req.AddCookie(secret)
	req.Header.Set(CSRFHeader, token)
	rr := httptest.NewRecorder()
	c.Middleware(okHandler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("existing secret must not be re-minted")
	}
}

func TestCSRF_AcceptsFormField(t *testing.T) {
	c := NewCSRF("key", CookiePolicy{}, true)
	secret, token := csrfFirstContact(t, c)

	form := url.Values{CSRFFormField: {token}, "content": {"hi"}}
	req := httptest.NewRequest("POST", "/api/posts/1/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(secret)
	rr := httptest.NewRecorder()
	c.Middleware(okHandler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestCSRF_TokenBoundToSecret(t *testing.T) {
	c := NewCSRF("key", CookiePolicy{}, true)
	_, tokenA := csrfFirstContact(t, c)
	secretB, _ := csrfFirstContact(t, c)

	req := httptest.NewRequest("POST", "/api/logout", nil)
	req.AddCookie(secretB)
	req.Header.Set(CSRFHeader, tokenA)
	rr := httptest.NewRecorder()
	c.Middleware(okHandler).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestCSRF_Disabled(t *testing.T) {
	c := NewCSRF("key", CookiePolicy{}, false)
	rr := httptest.NewRecorder()
	c.Middleware(okHandler).ServeHTTP(rr, httptest.NewRequest("POST", "/api/posts", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("disabled CSRF must not set cookies")
	}
}
