package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by Run when the chain already ran, is running,
	// or failed and has not been reset.
	ErrNotReady = errors.New("chain: not ready")

	// ErrPermanentFailure is returned by Reset when the chain failed and the
	// registry was not built with WithRetryAfterFailure(true).
	ErrPermanentFailure = errors.New("chain: failed permanently")

	// ErrInitFailed marks a Run that stopped at a link whose init reported
	// failure or panicked.
	ErrInitFailed = errors.New("chain: link init failed")
)

// LinkError describes the link that stopped a Run.
type LinkError struct {
	Chain    string
	Level    int
	Name     string
	Panicked bool
	Cause    error
}

func (e *LinkError) Error() string {
	what := "failed"
	if e.Panicked {
		what = "panicked"
	}
	name := e.Name
	if name == "" {
		name = "-"
	}
	if e.Cause == nil {
		return fmt.Sprintf("chain %q: init %s at level %d (%s)", e.Chain, what, e.Level, name)
	}
	return fmt.Sprintf("chain %q: init %s at level %d (%s): %v", e.Chain, what, e.Level, name, e.Cause)
}

// Unwrap exposes both ErrInitFailed and the callback's own error.
func (e *LinkError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInitFailed}
	}
	return []error{ErrInitFailed, e.Cause}
}
