package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrLimitReached      = errors.New("monthly post limit reached")
	ErrInvalidTransition = errors.New("post status does not allow this change")
	ErrUnknownPlatform   = errors.New("unsupported platform")
)
