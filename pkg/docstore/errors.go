package docstore

import "errors"

var (
	ErrNotFound      = errors.New("docstore: document not found")
	ErrAlreadyExists = errors.New("docstore: document already exists")
	ErrInvalidPath   = errors.New("docstore: invalid path")
	ErrDecode        = errors.New("docstore: failed to decode document")
	ErrStoreClosed   = errors.New("docstore: store is closed")
	ErrWatchStopped  = errors.New("docstore: watch stopped before condition was met")
)
