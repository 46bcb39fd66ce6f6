package plugin

import "context"

// Middleware wraps a command's execution (e.g. usage logging). The wrapped value is
// still a Command and keeps the inner command's metadata.
type Middleware func(Command) Command

// Apply applies middlewares in order; the last in the list is the outermost.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}

// Unwrappable is implemented by wrapped commands so callers can reach the
// underlying plugin.
type Unwrappable interface {
	Command
	Unwrap() Command
}

type wrapped struct {
	inner Command
	run   func(ctx context.Context, in *Interaction) error
}

func (w *wrapped) Metadata() CommandMetadata { return w.inner.Metadata() }

func (w *wrapped) Execute(ctx context.Context, in *Interaction) error {
	return w.run(ctx, in)
}

func (w *wrapped) Unwrap() Command { return w.inner }

// Wrap returns a command that runs run instead of c.Execute, delegating metadata to c.
func Wrap(c Command, run func(ctx context.Context, in *Interaction) error) Command {
	return &wrapped{inner: c, run: run}
}

// Root unwraps a command until the underlying command is not Unwrappable.
func Root(c Command) Command {
	for {
		u, ok := c.(Unwrappable)
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}

// WithMiddleware returns a copy of the set whose commands are wrapped with mws.
func (s *Set) WithMiddleware(mws ...Middleware) *Set {
	out := &Set{
		Commands: make([]CommandEntry, len(s.Commands)),
		Events:   s.Events,
	}
	for i, e := range s.Commands {
		e.Command = Apply(e.Command, mws...)
		out.Commands[i] = e
	}
	return out
}
