package handlers

import (
	"errors"
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/vuln-blog/internal/auth"
	"github.com/crucial707/vuln-blog/internal/metrics"
	"github.com/crucial707/vuln-blog/internal/middleware"
	"github.com/crucial707/vuln-blog/internal/repo"
)

// ==========================
// Cookie session auth
// ==========================
type SessionAuthHandler struct {
	Users      *repo.UserRepo
	Sessions   *repo.SessionRepo
	Policy     auth.PasswordPolicy
	Cookies    middleware.CookiePolicy
	SessionTTL time.Duration

	// RawErrors sends database error text to the client.
	RawErrors bool
	// ReflectMarkup echoes the username inside HTML markup on login failure.
	ReflectMarkup bool
}

type credentials struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// ==========================
// Register
// ==========================
func (h *SessionAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if !decodeJSON(w, r, &input) {
		return
	}

	fields := validationFields(input)
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
		slog.Error("register: hash password", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if _, err := h.Users.Create(r.Context(), input.Username, hash); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			JSONError(w, "User exists", http.StatusConflict)
			return
		}
		storeError(w, "register: create user", err, h.RawErrors)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created"})
}

// ==========================
// Login (sets the session cookie)
// ==========================
func (h *SessionAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), input.Username)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		h.loginFailed(w, input.Username)
		return
	case err != nil:
		storeError(w, "login: lookup user", err, h.RawErrors)
		return
	}
	if !auth.VerifyPassword(user.PasswordHash, input.Password) {
		h.loginFailed(w, input.Username)
		return
	}

	s, err := h.Sessions.Create(r.Context(), user.ID, user.Username, h.SessionTTL)
	if err != nil {
		slog.Error("login: create session", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	metrics.RecordLogin("session", true)

	h.Cookies.Set(w, &http.Cookie{
		Name:    middleware.SessionCookieName,
		Value:   s.ID,
		Expires: s.ExpiresAt,
		MaxAge:  int(h.SessionTTL.Seconds()),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    s.Principal(),
	})
}

// loginFailed answers the same text whether or not the account exists.
func (h *SessionAuthHandler) loginFailed(w http.ResponseWriter, username string) {
	metrics.RecordLogin("session", false)
	if h.ReflectMarkup {
		jsonErrorUnescaped(w, "Login failed for user <b>"+username+"</b>", http.StatusUnauthorized)
		return
	}
	JSONError(w, "Login failed for user: "+html.EscapeString(username), http.StatusUnauthorized)
}

// ==========================
// Logout (idempotent)
// ==========================
func (h *SessionAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetSessionID(r.Context())
	if id == "" {
		if c, err := r.Cookie(middleware.SessionCookieName); err == nil {
			id = c.Value
		}
	}
	if id != "" {
		if err := h.Sessions.Delete(r.Context(), id); err != nil {
			slog.Error("logout: delete session", "error", err)
		}
	}

	h.Cookies.Clear(w, middleware.SessionCookieName)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout"})
}

// ==========================
// Me
// ==========================
func (h *SessionAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		JSONError(w, "Unauthenticated", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": p})
}
