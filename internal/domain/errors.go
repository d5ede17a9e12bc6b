package domain

import "fmt"

// AuthError wraps a failure to resolve an identity. The mode controller
// answers it with a permanent fallback to demo mode.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response from the generation endpoint.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("generation endpoint returned %d: %s", e.Status, e.Body)
}

// ContentError means the generation response arrived but its shape was
// unusable (no candidates, empty text, missing fields).
type ContentError struct {
	Reason string
}

func (e *ContentError) Error() string {
	return "unusable generation response: " + e.Reason
}
