package entities

import (
	"errors"
	"fmt"
)

// RemoteError means the service answered but rejected the request.
type RemoteError struct {
	Op     string
	Status int
	Detail string // from the {"detail": ...} body, may be empty
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: service returned status %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: service returned status %d", e.Op, e.Status)
}

// TransportError means the request could not complete at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteDetail returns the service supplied detail carried by err, if any.
func RemoteDetail(err error) (string, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Detail != "" {
		return remote.Detail, true
	}
	return "", false
}
