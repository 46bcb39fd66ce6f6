package dispatch

import (
	"errors"
	"fmt"
)

// ErrNotCommand is returned for interactions that are not chat command invocations.
// They are discarded without a reply.
var ErrNotCommand = errors.New("interaction is not a chat command")

// MissingIdentifierError reports an interaction without a command name or user ID.
type MissingIdentifierError struct {
	Field string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("interaction has no %s", e.Field)
}

// CommandNotFoundError reports an interaction for a command that is not registered.
type CommandNotFoundError struct {
	Name string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("command %q does not exist", e.Name)
}

// CooldownActiveError reports an invocation inside the user's cooldown window.
type CooldownActiveError struct {
	Command   string
	UserID    string
	Remaining int // seconds
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("user %s is on cooldown for /%s (%ds remaining)", e.UserID, e.Command, e.Remaining)
}

// HandlerExecutionError carries a failure returned (or panicked) by a command plugin.
// The plugin owns reporting it to the user.
type HandlerExecutionError struct {
	Command string
	Err     error
}

func (e *HandlerExecutionError) Error() string {
	return fmt.Sprintf("command /%s failed: %v", e.Command, e.Err)
}

func (e *HandlerExecutionError) Unwrap() error { return e.Err }
