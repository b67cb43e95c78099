package middleware

import (
	"net/http"
	"time"
)

// SessionCookieName carries the server-side session id.
const SessionCookieName = "sid"

// CookiePolicy decides the attributes of every cookie the API sets.
// Strict: HttpOnly, Secure, SameSite=Lax. Relaxed: none of them.
type CookiePolicy struct {
	Relaxed bool
}

// Apply stamps the policy onto c and returns it.
func (p CookiePolicy) Apply(c *http.Cookie) *http.Cookie {
	if c.Path == "" {
		c.Path = "/"
	}
	if p.Relaxed {
		c.HttpOnly = false
		c.Secure = false
		c.SameSite = 0
		return c
	}
	c.HttpOnly = true
	c.Secure = true
	c.SameSite = http.SameSiteLaxMode
	return c
}

// Set writes c with the policy applied.
func (p CookiePolicy) Set(w http.ResponseWriter, c *http.Cookie) {
	http.SetCookie(w, p.Apply(c))
}

// Clear expires the named cookie.
func (p CookiePolicy) Clear(w http.ResponseWriter, name string) {
	p.Set(w, &http.Cookie{Name: name, Value: "", MaxAge: -1, Expires: time.Unix(0, 0)})
}
