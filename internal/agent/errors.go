package agent

import (
	"songbird/internal/search"

	"github.com/pkg/errors"
)

var (
	// ErrModelBackend is fatal for the request: the model was unreachable or answered garbage.
	ErrModelBackend = errors.New("model backend error")

	// ErrToolBackend is recovered inside the loop as an error-content tool result.
	ErrToolBackend = search.ErrBackend

	// ErrMalformedToolCall covers unknown tool names and broken tool call ids.
	ErrMalformedToolCall = errors.New("malformed tool call")

	ErrMaxIterations = errors.Wrap(ErrModelBackend, "maximum iterations reached")
)

// causeError matches its sentinel with errors.Is while keeping the backend
// cause reachable through Unwrap.
type causeError struct {
	sentinel error
	cause    error
}

func (e *causeError) Error() string { return e.sentinel.Error() + ": " + e.cause.Error() }

func (e *causeError) Unwrap() error { return e.cause }

func (e *causeError) Is(target error) bool { return target == e.sentinel }

func withCause(sentinel, cause error) error {
	return errors.WithStack(&causeError{sentinel: sentinel, cause: cause})
}
