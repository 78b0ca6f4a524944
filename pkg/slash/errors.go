package slash

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports a misuse of the declaration or registration API:
	// missing application id, missing handler, duplicate command or cog names.
	ErrConfiguration = errors.New("slash: configuration error")

	// ErrProtocol reports conflicting arguments handed to a response, such as
	// both a single embed and an embed list.
	ErrProtocol = errors.New("slash: protocol error")

	// ErrNotFound is returned when a command or cog is not registered, or when
	// a command has no remote id yet.
	ErrNotFound = errors.New("slash: not found")

	// ErrAmbiguousRoute is returned by Resolve when more than one option at the
	// same level names a child command.
	ErrAmbiguousRoute = errors.New("slash: ambiguous sub-command route")
)

// HandlerError wraps anything that went wrong between resolving an interaction
// and the handler returning. The engine reports it through EventError and never
// propagates it further.
type HandlerError struct {
	Command string
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("slash command /%s: %v", e.Command, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfiguration}, args...)...)
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}
