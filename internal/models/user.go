package models

import "time"

// User is an account. Username doubles as the e-mail for the token scheme.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Principal returns the identity of u.
func (u User) Principal() Principal {
	return Principal{ID: u.ID, Username: u.Username}
}
