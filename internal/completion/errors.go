package completion

import (
	"errors"
	"fmt"
)

// TransportError marks a completion failure as transient: a network
// error, a timeout, rate limiting, or a server-side (5xx) status. The
// orchestrator retries these with bounded backoff; any other error is
// surfaced immediately.
type TransportError struct {
	StatusCode int // zero when the request never produced a response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion transport failure (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
