package tika

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse is returned when a meta or recursive response body
	// is not a JSON part list.
	ErrMalformedResponse = errors.New("malformed tika response")
	// ErrInvalidServiceMode is returned by ParseServiceMode.
	ErrInvalidServiceMode = errors.New("invalid service mode")
	// ErrEmptySource is returned when a source cannot produce any bytes to send.
	ErrEmptySource = errors.New("empty source")
)

// TransportError reports a failure to reach the Tika server or read its reply.
// HTTP error statuses are not TransportErrors; they travel in RawResponse.
type TransportError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tika.%s [%s]: %v", e.Op, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
