package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/vuln-blog/internal/auth"
	"github.com/crucial707/vuln-blog/internal/metrics"
	"github.com/crucial707/vuln-blog/internal/repo"
)

// ==========================
// Bearer token auth
// ==========================
type TokenAuthHandler struct {
	Users  *repo.UserRepo
	Tokens *auth.Tokens
	Policy auth.PasswordPolicy

	// RawErrors sends database error text to the client.
	RawErrors bool
}

// tokenCredentials accepts either "email" or "username" as the account name.
type tokenCredentials struct {
	Email    string `json:"email" validate:"max=255"`
	Username string `json:"username" validate:"max=255"`
	Password string `json:"password" validate:"required"`
}

func (c tokenCredentials) name() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Username
}

const errInvalidCredentials = "Invalid credentials"

// ==========================
// Register
// ==========================
func (h *TokenAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input tokenCredentials
	if !decodeJSON(w, r, &input) {
		return
	}

	fields := validationFields(input)
	if input.name() == "" {
		fields["email"] = "required"
	}
	if _, bad := fields["password"]; !bad {
		if err := h.Policy.Check(input.Password); err != nil {
			fields["password"] = err.Error()
		}
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		slog.Error("token register: hash password", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if _, err := h.Users.Create(r.Context(), input.name(), hash); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			JSONError(w, "User exists", http.StatusConflict)
			return
		}
		storeError(w, "token register: create user", err, h.RawErrors)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ==========================
// Login (returns a JWT)
// ==========================
func (h *TokenAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input tokenCredentials
	if !decodeJSON(w, r, &input) {
		return
	}
	fields := map[string]string{}
	if input.name() == "" {
		fields["email"] = "required"
	}
	if input.Password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "email/password required", fields, http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), input.name())
	switch {
	case errors.Is(err, repo.ErrNotFound):
		h.fail(w)
		return
	case err != nil:
		storeError(w, "token login: lookup user", err, h.RawErrors)
		return
	}
	if !auth.VerifyPassword(user.PasswordHash, input.Password) {
		h.fail(w)
		return
	}

	token, err := h.Tokens.Issue(user.Principal())
	if err != nil {
		slog.Error("token login: issue token", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	metrics.RecordLogin("token", true)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// fail gives no hint whether the account exists.
func (h *TokenAuthHandler) fail(w http.ResponseWriter) {
	metrics.RecordLogin("token", false)
	JSONError(w, errInvalidCredentials, http.StatusUnauthorized)
}
