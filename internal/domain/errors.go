package domain

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrConnectivity marks failures where an upstream dependency could not be reached.
	ErrConnectivity = errors.New("upstream unreachable")
	// ErrAuthorNotFound is returned by author sources that hold no record for a name.
	ErrAuthorNotFound = errors.New("author not found")
	// ErrInvalidInput rejects malformed write requests.
	ErrInvalidInput = errors.New("invalid article")
	// ErrSourceUnavailable is surfaced to callers when a write cannot reach the article source.
	ErrSourceUnavailable = errors.New("article source unavailable")
	// ErrReadOnlySource is returned by article sources that cannot persist new articles.
	ErrReadOnlySource = errors.New("article source is read-only")
)

// ConnectivityError carries the upstream and operation of a connectivity failure.
type ConnectivityError struct {
	// Upstream identifies the unreachable dependency (e.g. "sqlite", "articles-service").
	Upstream string
	// Operation identifies what was attempted ("list", "add", "lookup").
	Operation string
	// Cause is the wrapped transport or driver error.
	Cause error
}

// Error returns one operator-readable failure summary.
func (e *ConnectivityError) Error() string {
	if e == nil {
		return "<nil>"
	}

	fields := make([]string, 0, 2)
	if upstream := strings.TrimSpace(e.Upstream); upstream != "" {
		fields = append(fields, "upstream="+upstream)
	}
	if operation := strings.TrimSpace(e.Operation); operation != "" {
		fields = append(fields, "operation="+operation)
	}

	msg := ErrConnectivity.Error()
	if len(fields) > 0 {
		msg += ": " + strings.Join(fields, " ")
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the wrapped root cause.
func (e *ConnectivityError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports ErrConnectivity as matching so callers can use errors.Is.
func (e *ConnectivityError) Is(target error) bool {
	return target == ErrConnectivity
}

// NewConnectivityError wraps cause as a connectivity failure of upstream.
func NewConnectivityError(upstream, operation string, cause error) error {
	return &ConnectivityError{Upstream: upstream, Operation: operation, Cause: cause}
}

// UpstreamError classifies a failed upstream call. A call abandoned because the
// caller cancelled its context is returned as is; anything else is a
// connectivity failure of upstream.
func UpstreamError(upstream, operation string, cause error) error {
	if errors.Is(cause, context.Canceled) {
		return cause
	}
	return NewConnectivityError(upstream, operation, cause)
}

// IsConnectivity reports whether err is, or wraps, a connectivity failure.
func IsConnectivity(err error) bool {
	return err != nil && errors.Is(err, ErrConnectivity)
}
