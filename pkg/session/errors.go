package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session: not found")
	ErrSessionExpired  = errors.New("session: expired")
	ErrNoToken         = errors.New("session: no token in request")
	ErrTokenGeneration = errors.New("session: failed to generate token")
)
