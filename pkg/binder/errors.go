package binder

import "errors"

var (
	// ErrBinderNotApplicable means the request carries nothing for this
	// binder; handlers move on to the next one.
	ErrBinderNotApplicable  = errors.New("binder: nothing to bind")
	ErrUnsupportedMediaType = errors.New("binder: unsupported media type")
	ErrFailedToParseJSON    = errors.New("binder: invalid JSON body")
	ErrFailedToParseQuery   = errors.New("binder: invalid query parameters")
	ErrFailedToParsePath    = errors.New("binder: invalid path parameters")
)
