// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the API has no paper for the ID or title.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited means the API answered HTTP 429.
	ErrRateLimited = errors.New("rate limit reached, too many requests")
)

// ServerError is any other non-2xx answer.
type ServerError struct {
	StatusCode int
	Body       string
	// Subject describes the lookup, e.g. `paper with ID "abc"`.
	Subject string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%d: %s for %s", e.StatusCode, e.Body, e.Subject)
}

// IsRateLimited reports whether err signals a rate limit.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsServerError reports whether err is a *ServerError.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
