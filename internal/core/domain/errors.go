package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrChannelNotFound indicates the channel handle could not be resolved
	ErrChannelNotFound = errors.New("channel not found")

	// ErrTranscriptUnavailable indicates a video has no usable captions.
	// Indexing counts these as skips.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrDimensionMismatch indicates an embedding's dimension does not match
	// the dimension already established in the vector store. The stored data
	// must be cleared before switching embedding models.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch: clear the stored index (--clear) before switching embedding models")

	// ErrIndexInProgress indicates another worker is already indexing the channel
	ErrIndexInProgress = errors.New("index already in progress for channel")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidCredentials indicates a wrong API password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates an external AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
