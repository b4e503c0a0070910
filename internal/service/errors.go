package service

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned before any network call when a required
// request parameter is missing.
var ErrInvalidRequest = errors.New("invalid request")

// TransportError is a network failure or an undecodable upstream body.
// It aborts the whole harvest.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream request %s (HTTP %d): %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
