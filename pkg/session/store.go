package session

import "context"

// Store persists sessions keyed by token.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, s *Session) error
	// Get returns the session for token or ErrSessionNotFound.
	Get(ctx context.Context, token string) (*Session, error)
	// Update replaces the stored session with the same token.
	Update(ctx context.Context, s *Session) error
	// Delete removes the session for token. Missing tokens are ignored.
	Delete(ctx context.Context, token string) error
}
