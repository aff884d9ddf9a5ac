package session

import (
	"errors"
	"fmt"
)

var (
	// ErrResolution means no playable URL could be obtained for the item.
	ErrResolution = errors.New("could not resolve item")
	// ErrEngine means the native engine failed to open or play.
	ErrEngine = errors.New("playback engine failed")

	ErrNotReady = errors.New("session is not ready")
)

// InitError is the fatal error returned by Initialize. Kind is ErrResolution or ErrEngine.
type InitError struct {
	Kind error
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *InitError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
