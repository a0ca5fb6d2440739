package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// RetryableError marks an error as safe to retry, carrying the HTTP
// status when one is known (429, 5xx).
type RetryableError struct {
	Err        error
	StatusCode int
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as explicitly retryable.
func Retryable(err error, statusCode int) *RetryableError {
	return &RetryableError{Err: err, StatusCode: statusCode}
}

// IsRetryable reports whether err is worth retrying: an explicit
// RetryableError anywhere in the chain, a network timeout, a dropped
// connection, or one of the usual transport failure strings that HTTP
// clients wrap beyond recognition.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var re *RetryableError
	if errors.As(err, &re) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// RetryableStatus reports whether an HTTP status indicates a transient
// server-side condition.
func RetryableStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
