// Package discord adapts a discordgo session to the dispatcher core: the event bus,
// the guild command endpoint and interaction replies.
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Intents requested on identify.
const Intents = discordgo.IntentGuilds | discordgo.IntentGuildMembers | discordgo.IntentMessageContent

// NewSession creates a gateway session for a bot token. It does not connect.
func NewSession(token string, log zerolog.Logger) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = Intents
	dg.LogLevel = discordgo.LogWarning
	routeLogs(log.With().Str("component", "discordgo").Logger())
	return dg, nil
}

// AppID returns id when set, otherwise the bot user's ID fetched from Discord.
func AppID(s *discordgo.Session, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	if s.State != nil && s.State.User != nil && s.State.User.ID != "" {
		return s.State.User.ID, nil
	}
	u, err := s.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}

// routeLogs sends discordgo's internal logging through log.
func routeLogs(log zerolog.Logger) {
	discordgo.Logger = func(msgL, _ int, format string, a ...interface{}) {
		var ev *zerolog.Event
		switch msgL {
		case discordgo.LogError:
			ev = log.Error()
		case discordgo.LogWarning:
			ev = log.Warn()
		case discordgo.LogInformational:
			ev = log.Info()
		default:
			ev = log.Debug()
		}
		ev.Msgf(format, a...)
	}
}
