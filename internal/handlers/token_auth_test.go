package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/vuln-blog/internal/auth"
	"github.com/crucial707/vuln-blog/internal/repo"
)

func newTokenAuth(t *testing.T) (*TokenAuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &TokenAuthHandler{
		Users:  repo.NewUserRepo(db, repo.Parameterized{}),
		Tokens: auth.NewTokens([]byte("test-secret"), time.Hour),
	}, mock
}

func TestTokenAuth_Register(t *testing.T) {
	h, mock := newTokenAuth(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("bob@example.test", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(2, "bob@example.test"))

	req := httptest.NewRequest("POST", "/api/auth/register", jsonBody(map[string]string{"email": "bob@example.test", "password": "long-enough-pw"}))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out map[string]bool
	json.NewDecoder(rr.Body).Decode(&out)
	if !out["ok"] {
		t.Errorf("expected ok=true, got %v", out)
	}
}

func TestTokenAuth_Register_MissingName(t *testing.T) {
	h, _ := newTokenAuth(t)

	req := httptest.NewRequest("POST", "/api/auth/register", jsonBody(map[string]string{"password": "long-enough-pw"}))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestTokenAuth_Login(t *testing.T) {
	h, mock := newTokenAuth(t)
	hash, _ := auth.HashPassword("long-enough-pw")

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("bob@example.test").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}).AddRow(2, "bob@example.test", hash))

	req := httptest.NewRequest("POST", "/api/auth/login", jsonBody(map[string]string{"email": "bob@example.test", "password": "long-enough-pw"}))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	json.NewDecoder(rr.Body).Decode(&out)
	p, err := h.Tokens.Parse(out.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if p.ID != 2 || p.Username != "bob@example.test" {
		t.Errorf("principal: got %+v", p)
	}
}

func TestTokenAuth_Login_IdenticalFailures(t *testing.T) {
	h, mock := newTokenAuth(t)
	hash, _ := auth.HashPassword("long-enough-pw")

	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("nobody@example.test").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}))
	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("bob@example.test").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}).AddRow(2, "bob@example.test", hash))

	attempt := func(email string) (int, string) {
		req := httptest.NewRequest("POST", "/api/auth/login", jsonBody(map[string]string{"email": email, "password": "wrong-password"}))
		rr := httptest.NewRecorder()
		h.Login(rr, req)
		return rr.Code, rr.Body.String()
	}

	unknownCode, unknownBody := attempt("nobody@example.test")
	wrongCode, wrongBody := attempt("bob@example.test")

	if unknownCode != http.StatusUnauthorized || wrongCode != http.StatusUnauthorized {
		t.Errorf("codes: %d %d, want 401", unknownCode, wrongCode)
	}
	if unknownBody != wrongBody {
		t.Errorf("bodies differ: %q vs %q", unknownBody, wrongBody)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestTokenAuth_Login_MissingFields(t *testing.T) {
	h, mock := newTokenAuth(t)

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"no email", map[string]string{"password": "long-enough-pw"}, "email"},
		{"no password", map[string]string{"email": "bob@example.test"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/auth/login", jsonBody(tt.body))
			rr := httptest.NewRecorder()
			h.Login(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rr.Code)
			}
			var out struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Error != "email/password required" || out.Fields[tt.field] != "required" {
				t.Errorf("body: %+v", out)
			}
		})
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("store touched for invalid input: %v", err)
	}
}
