package api

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/aluiziolira/cosmetics-storefront/parser"
)

// ValidationError is a client-side form error. It never reaches the network.
type ValidationError = parser.ValidationError

// TimeoutError indicates the per-request timeout fired before a response arrived.
type TimeoutError struct {
	Op  string
	Err error
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("%s: request timed out", e.Op)
}

func (e TimeoutError) Unwrap() error {
	return e.Err
}

// TransportError indicates a network failure, a non-2xx status, or a JSON
// envelope reporting failure.
type TransportError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// DecodeError indicates a response body that is not JSON or cannot be parsed.
type DecodeError struct {
	Op          string
	ContentType string
	Err         error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response (content-type %q): %v", e.Op, e.ContentType, e.Err)
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

// AuthError indicates a missing or rejected token. Views answer it with a
// login prompt rather than a raw error.
type AuthError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// errNonJSON is wrapped by DecodeError when the content type is not JSON.
var errNonJSON = errors.New("server returned non-JSON response")

// IsAuth reports whether err should be answered with a login prompt.
func IsAuth(err error) bool {
	var authErr AuthError
	return errors.As(err, &authErr)
}

// Retryable reports whether the fetcher may repeat a request after err.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var (
		timeout   TimeoutError
		transport TransportError
		decode    DecodeError
	)
	return errors.As(err, &timeout) || errors.As(err, &transport) || errors.As(err, &decode)
}

// classifyError maps an error returned by the HTTP layer onto the taxonomy.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError{Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimeoutError{Op: op, Err: err}
	}
	return TransportError{Op: op, Err: err}
}

// statusError maps a non-2xx status onto the taxonomy.
func statusError(op string, status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return AuthError{Op: op, StatusCode: status, Message: message}
	}
	return TransportError{Op: op, StatusCode: status, Message: message}
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	var timeout TimeoutError
	if errors.As(err, &timeout) {
		return "timeout"
	}
	var decode DecodeError
	if errors.As(err, &decode) {
		return "decode"
	}
	var authErr AuthError
	if errors.As(err, &authErr) {
		return "auth"
	}
	var validation ValidationError
	if errors.As(err, &validation) {
		return "validation"
	}
	var transport TransportError
	if errors.As(err, &transport) {
		return "transport"
	}
	return "other"
}
