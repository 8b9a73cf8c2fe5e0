package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedTransport is returned for push transports the service cannot open.
var ErrUnsupportedTransport = errors.New("unsupported push transport")

// ErrStreamClosed reports that the server ended the push stream cleanly.
var ErrStreamClosed = errors.New("push stream closed by server")

// APIError is a non-JSON error answer from the server. Logical failures that
// come back as {"success": false} are not APIErrors.
type APIError struct {
	StatusCode int
	Body       string
	RetryAfter time.Time // Zero unless the server sent Retry-After
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error %d", e.StatusCode)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}
