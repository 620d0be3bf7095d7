package service

import "errors"

var (
	// ErrUnknownAction is returned for action names outside the
	// supported set.
	ErrUnknownAction = errors.New("service: unknown action")

	// ErrInvalidArgument is returned when a required argument is
	// missing or has the wrong type.
	ErrInvalidArgument = errors.New("service: invalid argument")
)
