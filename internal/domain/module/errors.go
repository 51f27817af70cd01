package module

import "errors"

var (
	// ErrInvalidRegistration reports malformed input to Register.
	ErrInvalidRegistration = errors.New("module: invalid registration")
	// ErrRenderFailed wraps a module render or cache failure.
	ErrRenderFailed = errors.New("module: render failed")
)
