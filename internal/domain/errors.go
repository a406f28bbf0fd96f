package domain

import (
	"errors"
	"fmt"
)

// ErrStreamInterrupted reports a log stream that ended before the completion sentinel.
var ErrStreamInterrupted = errors.New("stream closed before completion")

// NetworkError is a transport failure: the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is a non-2xx response. Detail holds the JSON "detail" field when present.
type BackendError struct {
	Op     string
	Status int
	Detail string
}

func (e *BackendError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s failed: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s failed: status %d: %s", e.Op, e.Status, e.Detail)
}

// ValidationError is a locally detected problem that prevented a request.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// FetchError is returned when the file list could not be refreshed.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch files: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Detail renders err for a user-facing notification. A non-2xx response
// shows the backend's detail message, or fallback when it sent none. Other
// failures show their own text; a transport failure shows the cause without
// the operation prefix.
func Detail(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var be *BackendError
	if errors.As(err, &be) {
		if be.Detail != "" {
			return be.Detail
		}
		return fallback
	}
	var ne *NetworkError
	if errors.As(err, &ne) && ne.Err != nil {
		return ne.Err.Error()
	}
	return err.Error()
}
