// Package registry stores validated commands by name and publishes their metadata to
// the gateway.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/keshon/dispatchbot/internal/plugin"

	"github.com/bwmarrin/discordgo"
)

// Remote is the gateway's guild command endpoint.
type Remote interface {
	// OverwriteCommands replaces the guild's entire command set.
	OverwriteCommands(ctx context.Context, cmds []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error)
	// Commands returns the guild's registered command set.
	Commands(ctx context.Context) ([]*discordgo.ApplicationCommand, error)
}

// DuplicateCommandError reports a second command with an already registered name.
type DuplicateCommandError struct {
	Name string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q is already registered", e.Name)
}

// RegistrationError reports a failed publish or fetch against the gateway.
type RegistrationError struct {
	Op  string
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("command registration failed (%s): %v", e.Op, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// Registry stores commands by name.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]plugin.CommandEntry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{commands: make(map[string]plugin.CommandEntry)}
}

// Register adds a command. Names are unique.
func (r *Registry) Register(c plugin.CommandEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[c.Name]; exists {
		return &DuplicateCommandError{Name: c.Name}
	}
	r.commands[c.Name] = c
	return nil
}

// RegisterAll registers every entry, stopping at the first error.
func (r *Registry) RegisterAll(entries []plugin.CommandEntry) error {
	for _, c := range entries {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the command with the given name.
func (r *Registry) Lookup(name string) (plugin.CommandEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// All returns all registered commands, sorted by name.
func (r *Registry) All() []plugin.CommandEntry {
	r.mu.RLock()
	list := make([]plugin.CommandEntry, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Definitions returns the gateway payload for every registered command.
func (r *Registry) Definitions() []*discordgo.ApplicationCommand {
	all := r.All()
	defs := make([]*discordgo.ApplicationCommand, 0, len(all))
	for _, c := range all {
		defs = append(defs, &discordgo.ApplicationCommand{
			Type:        discordgo.ChatApplicationCommand,
			Name:        c.Name,
			Description: c.Description,
			Options:     c.Options,
		})
	}
	return defs
}

// Publish overwrites the guild's command set with the registered commands in a single
// call, then re-fetches the set and returns its size. There is no retry.
func (r *Registry) Publish(ctx context.Context, remote Remote) (int, error) {
	if _, err := remote.OverwriteCommands(ctx, r.Definitions()); err != nil {
		return 0, &RegistrationError{Op: "overwrite", Err: err}
	}

	registered, err := remote.Commands(ctx)
	if err != nil {
		return 0, &RegistrationError{Op: "fetch", Err: err}
	}
	return len(registered), nil
}
