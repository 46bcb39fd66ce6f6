// Package dispatch routes chat command interactions to command plugins, enforcing the
// per-user cooldown before a handler runs.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/dispatchbot/internal/cooldown"
	"github.com/keshon/dispatchbot/internal/plugin"
	"github.com/keshon/dispatchbot/internal/registry"

	"github.com/rs/zerolog"
)

const (
	msgSomethingWrong = "Something went wrong. Try again."
	msgUnknownCommand = "This command doesn't exist."
	msgCooldown       = "Please wait you are on cooldown, you can use this command again in %d seconds."
)

const defaultMaxConcurrent = 64

// Options tunes a Dispatcher. Zero values select defaults.
type Options struct {
	// MaxConcurrent bounds how many command handlers run at once. Tasks over the
	// limit wait for a slot in their own goroutine so the event loop never blocks;
	// waiting tasks are bounded by the cooldown to one per (command, user) pair.
	MaxConcurrent int
	// Now is the clock used for cooldown decisions.
	Now func() time.Time
}

// Dispatcher owns the command registry and the cooldown table for the process lifetime.
type Dispatcher struct {
	registry  *registry.Registry
	cooldowns *cooldown.Manager
	log       zerolog.Logger
	now       func() time.Time

	slots chan struct{}
	wg    sync.WaitGroup
}

// New returns a dispatcher over reg and cooldowns.
func New(reg *registry.Registry, cooldowns *cooldown.Manager, log zerolog.Logger, opts Options) *Dispatcher {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dispatcher{
		registry:  reg,
		cooldowns: cooldowns,
		log:       log.With().Str("component", "dispatcher").Logger(),
		now:       opts.Now,
		slots:     make(chan struct{}, opts.MaxConcurrent),
	}
}

// Metadata subscribes the dispatcher to every interaction.
func (d *Dispatcher) Metadata() plugin.EventMetadata {
	return plugin.EventMetadata{Event: plugin.EventInteractionCreate, Active: true}
}

// Handle is the bus entry point. Per-interaction errors are recovered here: the user
// has already been told, so they are only logged.
func (d *Dispatcher) Handle(ctx context.Context, payload any) error {
	in, ok := payload.(*plugin.Interaction)
	if !ok {
		return nil
	}

	_, err := d.Dispatch(ctx, in)
	switch {
	case err == nil, errors.Is(err, ErrNotCommand):
	default:
		d.log.Info().Err(err).Str("command", in.CommandName).Str("user", in.UserID).Msg("Interaction rejected")
	}
	return nil
}

// Dispatch validates in, resolves its command, applies the cooldown and schedules the
// handler. A nil Task means the interaction was rejected; the returned error says why
// and, except for ErrNotCommand, the user has received an ephemeral reply.
func (d *Dispatcher) Dispatch(ctx context.Context, in *plugin.Interaction) (*Task, error) {
	if in == nil || in.Kind != plugin.KindChatCommand {
		return nil, ErrNotCommand
	}

	if in.CommandName == "" {
		d.reply(ctx, in, msgSomethingWrong)
		return nil, &MissingIdentifierError{Field: "command name"}
	}
	if in.UserID == "" {
		d.reply(ctx, in, msgSomethingWrong)
		return nil, &MissingIdentifierError{Field: "user id"}
	}

	c, ok := d.registry.Lookup(in.CommandName)
	if !ok {
		d.reply(ctx, in, msgUnknownCommand)
		return nil, &CommandNotFoundError{Name: in.CommandName}
	}

	started := d.now()
	decision := d.cooldowns.CheckAndRecord(c.Name, in.UserID, c.Cooldown, started)
	if !decision.Allowed {
		d.reply(ctx, in, fmt.Sprintf(msgCooldown, decision.Remaining))
		return nil, &CooldownActiveError{Command: c.Name, UserID: in.UserID, Remaining: decision.Remaining}
	}

	return d.schedule(ctx, c, in, started), nil
}

// Wait blocks until every scheduled handler has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) schedule(ctx context.Context, c plugin.CommandEntry, in *plugin.Interaction, started time.Time) *Task {
	t := &Task{Command: c.Name, UserID: in.UserID, Started: started, done: make(chan struct{})}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(t.done)

		select {
		case d.slots <- struct{}{}:
		case <-ctx.Done():
			// The handler never ran: give the window back and tell the user.
			t.err = ctx.Err()
			d.cooldowns.Release(c.Name, in.UserID, started)
			d.reply(context.WithoutCancel(ctx), in, msgSomethingWrong)
			d.log.Warn().Err(t.err).Str("command", c.Name).Str("user", in.UserID).Msg("Command dropped before start")
			return
		}
		defer func() { <-d.slots }()

		if err := run(ctx, c, in); err != nil {
			t.err = &HandlerExecutionError{Command: c.Name, Err: err}
			d.log.Error().Err(err).Str("command", c.Name).Str("user", in.UserID).Msg("Command failed")
			return
		}
		d.log.Debug().Str("command", c.Name).Str("user", in.UserID).Dur("took", d.now().Sub(started)).Msg("Command completed")
	}()
	return t
}

func run(ctx context.Context, c plugin.CommandEntry, in *plugin.Interaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Command.Execute(ctx, in)
}

func (d *Dispatcher) reply(ctx context.Context, in *plugin.Interaction, content string) {
	if err := in.ReplyEphemeral(ctx, content); err != nil {
		d.log.Warn().Err(err).Str("command", in.CommandName).Msg("Failed to reply")
	}
}
