package models

import "time"

// Session is a server-side login record referenced by the session cookie.
type Session struct {
	ID        string
	UserID    int
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Principal returns the identity the session authenticates.
func (s Session) Principal() Principal {
	return Principal{ID: s.UserID, Username: s.Username}
}
