package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the expected upstream and local failure kinds.
// Handlers match these with errors.Is and own the mapping to HTTP
// statuses; nothing below the handler layer writes a response.
var (
	// ErrInvalidIdentifier means a video or comment identifier could not
	// be parsed into an upstream id.
	ErrInvalidIdentifier = errors.New("invalid video or comment identifier")

	// ErrAuthenticationRequired means a privileged operation was called
	// without a bearer token. Raised before any network I/O.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrUpstreamAuth means the upstream platform rejected the supplied
	// credentials (401/403).
	ErrUpstreamAuth = errors.New("upstream rejected credentials")

	// ErrNotFound means the upstream platform has no such resource.
	ErrNotFound = errors.New("resource not found")

	// ErrOwnership means the authenticated caller does not own the
	// target video. Distinct from a plain not-found.
	ErrOwnership = errors.New("video is not owned by the authenticated channel")

	// ErrCommentsDisabled is an expected upstream state, not a failure:
	// the video exists but its owner turned comments off.
	ErrCommentsDisabled = errors.New("comments are disabled for this video")
)

// APIError is any other upstream failure, carrying the upstream HTTP
// status and message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube api error (status %d): %s", e.StatusCode, e.Message)
}
