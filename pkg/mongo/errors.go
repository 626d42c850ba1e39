package mongo

import "errors"

var (
	ErrNotReady  = errors.New("mongo: deployment did not answer in time")
	ErrUnhealthy = errors.New("mongo: ping failed")
)
