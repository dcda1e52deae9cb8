package models

import "time"

// User models a registered account that owns watchlists.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt    time.Time `json:"createdAt"`
}

// SignupInput captures the fields required to register an account.
type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginInput carries credentials for an authentication attempt.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session represents one server-side login session. The token travels in an
// HTTP-only cookie; the record itself lives in the database so sessions stay
// revocable.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
