package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Remote is the guild command endpoint for one application.
type Remote struct {
	dg      *discordgo.Session
	appID   string
	guildID string
}

// NewRemote returns the command endpoint for appID in guildID.
func NewRemote(s *discordgo.Session, appID, guildID string) *Remote {
	return &Remote{dg: s, appID: appID, guildID: guildID}
}

// OverwriteCommands replaces the guild's command set in one bulk call.
func (r *Remote) OverwriteCommands(ctx context.Context, cmds []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error) {
	return r.dg.ApplicationCommandBulkOverwrite(r.appID, r.guildID, cmds, discordgo.WithContext(ctx))
}

// Commands returns the guild's registered commands.
func (r *Remote) Commands(ctx context.Context) ([]*discordgo.ApplicationCommand, error) {
	return r.dg.ApplicationCommands(r.appID, r.guildID, discordgo.WithContext(ctx))
}
