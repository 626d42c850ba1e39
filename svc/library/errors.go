package library

import "errors"

var (
	ErrNotAuthenticated = errors.New("library: user is not authenticated")
	ErrInvalidBookID    = errors.New("library: invalid book id")
)
