package store

import "errors"

var (
	ErrInvalidDay   = errors.New("invalid day")
	ErrInvalidEvent = errors.New("invalid turn event")
)
