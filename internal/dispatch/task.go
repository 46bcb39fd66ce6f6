package dispatch

import "time"

// Task is a scheduled command execution.
type Task struct {
	Command string
	UserID  string
	// Started is the cooldown timestamp recorded for this execution.
	Started time.Time

	done chan struct{}
	err  error
}

// Done is closed when the handler returns.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the handler returns. A handler failure is a *HandlerExecutionError.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}
