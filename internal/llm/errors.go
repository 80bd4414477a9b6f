package llm

import (
	"errors"
	"fmt"
)

// ErrNoChoices is wrapped in a TransportError when a 200 answer carries no choices
var ErrNoChoices = errors.New("no choices in response")

// UpstreamError is returned when the service answered with something other than a usable 200
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// TransportError wraps failures that happened before a response could be read:
// DNS, refused connections, timeouts and undecodable bodies.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err carries an *UpstreamError
func IsUpstream(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}

// IsTransport reports whether err carries a *TransportError
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}
