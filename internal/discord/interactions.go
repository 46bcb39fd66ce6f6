package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/keshon/dispatchbot/internal/plugin"

	"github.com/bwmarrin/discordgo"
)

type replyState int

const (
	unanswered replyState = iota
	deferred
	answered
)

// responder answers one interaction. The first reply is the interaction response (or
// the edit of a deferred one); later replies are followup messages.
type responder struct {
	dg          *discordgo.Session
	interaction *discordgo.Interaction

	mu    sync.Mutex
	state replyState
}

// Defer acknowledges the interaction with a "thinking" placeholder.
func (r *responder) Defer(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != unanswered {
		return nil
	}

	err := r.dg.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	r.state = deferred
	return nil
}

func (r *responder) Reply(ctx context.Context, resp plugin.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case unanswered:
		err := r.dg.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: resp.Content,
				Flags:   flagsOf(resp),
				Embeds:  resp.Embeds,
				Files:   resp.Files,
			},
		}, discordgo.WithContext(ctx))
		if err != nil {
			return err
		}
	case deferred:
		// A deferred placeholder is public and cannot turn ephemeral, so an ephemeral
		// reply goes out as a followup and the placeholder is removed.
		if resp.Ephemeral {
			if err := r.followup(ctx, resp); err != nil {
				return err
			}
			r.state = answered
			if err := r.dg.InteractionResponseDelete(r.interaction, discordgo.WithContext(ctx)); err != nil {
				return fmt.Errorf("remove deferred response: %w", err)
			}
			return nil
		}
		edit := &discordgo.WebhookEdit{Content: &resp.Content, Files: resp.Files}
		if len(resp.Embeds) > 0 {
			edit.Embeds = &resp.Embeds
		}
		if _, err := r.dg.InteractionResponseEdit(r.interaction, edit, discordgo.WithContext(ctx)); err != nil {
			return err
		}
	default:
		return r.followup(ctx, resp)
	}

	r.state = answered
	return nil
}

func (r *responder) followup(ctx context.Context, resp plugin.Response) error {
	_, err := r.dg.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: resp.Content,
		Flags:   flagsOf(resp),
		Embeds:  resp.Embeds,
		Files:   resp.Files,
	}, discordgo.WithContext(ctx))
	return err
}

func flagsOf(resp plugin.Response) discordgo.MessageFlags {
	if resp.Ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// toInteraction converts a gateway interaction into the core's view of it.
func toInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) *plugin.Interaction {
	in := &plugin.Interaction{
		Kind:      kindOf(i.Interaction),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Replier:   &responder{dg: s, interaction: i.Interaction},
		Session:   s,
		Event:     i,
	}
	if u := resolveUser(i.Interaction); u != nil {
		in.UserID = u.ID
		in.Username = u.Username
	}
	if data, ok := i.Data.(discordgo.ApplicationCommandInteractionData); ok {
		in.CommandName = data.Name
		in.Options = optionsOf(data.Options)
	}
	return in
}

func kindOf(i *discordgo.Interaction) plugin.InteractionKind {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
		if !ok {
			return plugin.KindUnknown
		}
		switch data.CommandType {
		case discordgo.ChatApplicationCommand, 0:
			return plugin.KindChatCommand
		default:
			return plugin.KindContextMenu
		}
	case discordgo.InteractionMessageComponent:
		return plugin.KindComponent
	case discordgo.InteractionApplicationCommandAutocomplete:
		return plugin.KindAutocomplete
	case discordgo.InteractionModalSubmit:
		return plugin.KindModalSubmit
	default:
		return plugin.KindUnknown
	}
}

// resolveUser returns the invoking user: Member.User in guilds, User in DMs.
func resolveUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// optionsOf maps top-level option names to their values. Subcommand options are
// flattened into the same map.
func optionsOf(opts []*discordgo.ApplicationCommandInteractionDataOption) plugin.Options {
	out := make(plugin.Options, len(opts))
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			for k, v := range optionsOf(o.Options) {
				out[k] = v
			}
		default:
			out[o.Name] = o.Value
		}
	}
	return out
}
