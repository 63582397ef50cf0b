package model

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no record matches the given id and scope.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest is returned for missing or malformed payloads.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidQuery is returned when a filter expression cannot be translated.
	ErrInvalidQuery = errors.New("unable to process query")
	// ErrCanceled is returned when the operation is canceled by the client.
	ErrCanceled = errors.New("operation canceled")
)

// WrapError converts context cancellation into ErrCanceled; other errors
// pass through unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsCanceled(err) {
		return ErrCanceled
	}
	return err
}

// IsCanceled reports whether the error is due to context cancellation or
// deadline exceeded, including wrapped driver errors.
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrCanceled) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "context canceled") || strings.Contains(errStr, "context deadline exceeded")
}
