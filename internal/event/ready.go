package event

import (
	"context"
	"errors"

	"github.com/keshon/dispatchbot/internal/plugin"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

var ErrNoReadyUser = errors.New("event READY: the client user is not valid")

// Ready announces the bot user once the gateway session is established.
type Ready struct {
	Log zerolog.Logger
}

func (r *Ready) Metadata() plugin.EventMetadata {
	return plugin.EventMetadata{Event: plugin.EventReady, Once: true, Active: true}
}

func (r *Ready) Handle(_ context.Context, payload any) error {
	ready, ok := payload.(*discordgo.Ready)
	if !ok || ready == nil || ready.User == nil {
		return ErrNoReadyUser
	}
	r.Log.Info().Int("guilds", len(ready.Guilds)).Msgf("%s is ready.", ready.User.String())
	return nil
}
