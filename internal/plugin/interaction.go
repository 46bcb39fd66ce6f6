package plugin

import (
	"context"
	"errors"
	"math"

	"github.com/bwmarrin/discordgo"
)

// InteractionKind classifies an inbound interaction.
type InteractionKind int

const (
	KindUnknown InteractionKind = iota
	KindChatCommand
	KindContextMenu
	KindComponent
	KindAutocomplete
	KindModalSubmit
)

func (k InteractionKind) String() string {
	switch k {
	case KindChatCommand:
		return "chat_command"
	case KindContextMenu:
		return "context_menu"
	case KindComponent:
		return "component"
	case KindAutocomplete:
		return "autocomplete"
	case KindModalSubmit:
		return "modal_submit"
	default:
		return "unknown"
	}
}

// Response is a reply to an interaction.
type Response struct {
	Content   string
	Ephemeral bool
	Embeds    []*discordgo.MessageEmbed
	Files     []*discordgo.File
}

// Replier delivers responses for a single interaction.
type Replier interface {
	Reply(ctx context.Context, r Response) error
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(ctx context.Context, r Response) error

func (f ReplierFunc) Reply(ctx context.Context, r Response) error { return f(ctx, r) }

// Deferrer is implemented by repliers that can acknowledge an interaction before the
// first reply is ready. The platform drops interactions that stay unacknowledged for
// a few seconds.
type Deferrer interface {
	Defer(ctx context.Context) error
}

var errNoReplier = errors.New("interaction has no replier")

// Options holds top-level option values by name, as decoded from the gateway.
type Options map[string]any

// String returns the named option as a string.
func (o Options) String(name string) (string, bool) {
	v, ok := o[name].(string)
	return v, ok
}

// Int returns the named option as an integer. JSON numbers arrive as float64.
func (o Options) Int(name string) (int64, bool) {
	switch v := o[name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// Bool returns the named option as a boolean.
func (o Options) Bool(name string) (bool, bool) {
	v, ok := o[name].(bool)
	return v, ok
}

// Interaction is an inbound user interaction as seen by the core.
type Interaction struct {
	Kind        InteractionKind
	CommandName string
	UserID      string
	Username    string
	GuildID     string
	ChannelID   string
	Options     Options

	Replier Replier

	// Raw platform values; nil outside of a live gateway session.
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
}

// Reply sends r through the interaction's replier.
func (in *Interaction) Reply(ctx context.Context, r Response) error {
	if in.Replier == nil {
		return errNoReplier
	}
	return in.Replier.Reply(ctx, r)
}

// ReplyEphemeral sends a private plain-text reply.
func (in *Interaction) ReplyEphemeral(ctx context.Context, content string) error {
	return in.Reply(ctx, Response{Content: content, Ephemeral: true})
}

// Defer acknowledges the interaction so a slow command can reply later. It is a no-op
// when the replier cannot defer.
func (in *Interaction) Defer(ctx context.Context) error {
	if d, ok := in.Replier.(Deferrer); ok {
		return d.Defer(ctx)
	}
	return nil
}
