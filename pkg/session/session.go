package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is a browser session. ID is stable for the session's lifetime and
// keys per-session state; Token is the secret carried by the cookie and is
// rotated whenever the signed-in identity changes.
type Session struct {
	ID             string    `json:"id"`
	Token          string    `json:"token"`
	UserID         string    `json:"user_id,omitempty"`
	Email          string    `json:"email,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func newSession(token string, ttl time.Duration, now time.Time) *Session {
	return &Session{
		ID:             uuid.NewString(),
		Token:          token,
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

// IsAuthenticated reports whether an identity is bound to the session.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != ""
}

func (s *Session) IsExpired(now time.Time) bool {
	return s != nil && now.After(s.ExpiresAt)
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
