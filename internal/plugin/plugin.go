// Package plugin defines the contracts command and event plugins implement, the
// interaction value handed to commands, and the loader that turns a plugin source
// into validated, registrable entries.
package plugin

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Platform event kinds the core itself knows about. Event plugins may subscribe to any
// other gateway event name as well.
const (
	EventReady             = "READY"
	EventInteractionCreate = "INTERACTION_CREATE"
	EventGuildCreate       = "GUILD_CREATE"
)

// DefaultCooldown applies to commands that do not declare one.
const DefaultCooldown = 3 * time.Second

// Cooldown is an optional per-user cooldown declaration. The zero value means unset.
type Cooldown struct {
	seconds int
	set     bool
}

// CooldownSeconds declares a cooldown of n seconds.
func CooldownSeconds(n int) Cooldown {
	return Cooldown{seconds: n, set: true}
}

// Seconds returns the declared value and whether one was declared at all.
func (c Cooldown) Seconds() (int, bool) {
	return c.seconds, c.set
}

// CommandMetadata is what a command plugin declares about itself.
type CommandMetadata struct {
	Name        string
	Description string
	Options     []*discordgo.ApplicationCommandOption
	Cooldown    Cooldown
	Active      bool
}

// Command is implemented by every command plugin.
type Command interface {
	Metadata() CommandMetadata
	// Execute runs the command. It is expected to reply at least once and to report
	// its own failures to the user; the dispatcher does not reply on its behalf.
	Execute(ctx context.Context, in *Interaction) error
}

// EventMetadata is what an event plugin declares about itself.
type EventMetadata struct {
	Event  string
	Once   bool
	Active bool
}

// EventHandler is implemented by every event plugin. The payload is whatever the bus
// delivers for the event: *Interaction for INTERACTION_CREATE, the raw gateway struct
// (e.g. *discordgo.Ready) otherwise.
type EventHandler interface {
	Metadata() EventMetadata
	Handle(ctx context.Context, payload any) error
}

// CommandEntry is a validated command with its cooldown resolved.
type CommandEntry struct {
	Name        string
	Description string
	Options     []*discordgo.ApplicationCommandOption
	Cooldown    time.Duration
	Command     Command
}

// Set is the outcome of a successful load. Inactive plugins are not part of it.
type Set struct {
	Commands []CommandEntry
	Events   []EventHandler
}
