// internal/ollama/errors.go
// Package: ollama
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrEmptyModel is returned, with a nil Generation, when no model is named.
var ErrEmptyModel = errors.New("model name is required")

// ErrorKind classifies why a generation call failed.
type ErrorKind string

const (
	KindTimeout    ErrorKind = "timeout"     // no completion within the call timeout
	KindConnection ErrorKind = "connection"  // endpoint unreachable
	KindHTTPStatus ErrorKind = "http_status" // non-2xx response
	KindIncomplete ErrorKind = "incomplete"  // body ended without a done event
	KindCanceled   ErrorKind = "canceled"    // parent context cancelled
	KindRead       ErrorKind = "read"        // any other body/decoding failure
)

// Error is the typed failure returned by Generate.
type Error struct {
	Kind       ErrorKind
	Model      string
	StatusCode int    // set for KindHTTPStatus
	Body       string // response body for KindHTTPStatus
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("ollama %s: status=%d body=%s", e.Model, e.StatusCode, e.Body)
	case KindIncomplete:
		return fmt.Sprintf("ollama %s: stream ended before done", e.Model)
	}
	return fmt.Sprintf("ollama %s: %s: %v", e.Model, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind carried by err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}

// classify maps a transport error onto an ErrorKind. callCtx carries the call
// timeout, parent is the caller's context; fallback is used when nothing more
// specific matches.
func classify(parent, callCtx context.Context, err error, fallback ErrorKind) ErrorKind {
	if parent.Err() != nil {
		return KindCanceled
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return KindConnection
	}
	return fallback
}
