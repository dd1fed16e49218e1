package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNoActiveChat       = errors.New("no active chat")
	ErrSendInFlight       = errors.New("a message is already being sent")
	ErrChannelUnavailable = errors.New("realtime channel is not connected for this chat")
)
