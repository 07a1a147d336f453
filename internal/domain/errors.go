package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the archive server is unreachable
	ErrServerOffline = errors.New("archive server is unreachable")

	// ErrAuthFailed indicates the operator code was rejected
	ErrAuthFailed = errors.New("operator code was rejected")

	// ErrUnauthorized indicates a mutating request was refused by the server
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound indicates the requested post, media, account or artist does not exist
	ErrNotFound = errors.New("not found")

	// ErrLoadInFlight indicates a load for the same navigation key is already running
	ErrLoadInFlight = errors.New("load already in flight")
)
