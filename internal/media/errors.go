package media

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned by pushes when the backend has no active session
	ErrNoSession = errors.New("no active media session")

	// ErrAlreadyAttached is returned when Attach is called twice
	ErrAlreadyAttached = errors.New("media handler already attached")
)

// RegistrationError reports that a backend could not register its handler.
// It is fatal at startup.
type RegistrationError struct {
	Backend string
	Err     error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s media controls: %v", e.Backend, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// PushError reports that the backend rejected an outbound update
type PushError struct {
	Op  string // "set_playback" or "set_metadata"
	Err error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PushError) Unwrap() error {
	return e.Err
}
