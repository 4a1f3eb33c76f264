package sandbox

import (
	"time"

	"github.com/lborres/agromart/core"
)

// Account holds the password credential of a user
type Account struct {
	UserID       int64
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a server-side login. Only the hash of the bearer token is
// kept.
type Session struct {
	ID        string
	UserID    int64
	TokenHash string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionData is what an authenticated request resolves to
type SessionData struct {
	User    *core.User
	Session *Session
}

type CreateSessionResult struct {
	Session *Session
	Token   string
}

// Document is one uploaded KYC file
type Document struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Client identifies the caller of an auth request
type Client struct {
	IP        string
	UserAgent string
}
