// Package middleware holds command middlewares applied at registration time.
package middleware

import (
	"context"
	"time"

	"github.com/keshon/dispatchbot/internal/plugin"
	"github.com/keshon/dispatchbot/internal/storage"

	"github.com/rs/zerolog"
)

// HistoryStore receives one record per executed command.
type HistoryStore interface {
	AppendCommandToHistory(guildID string, record storage.CommandHistoryRecord) error
}

// WithCommandLogger records every execution of the wrapped command to store.
func WithCommandLogger(store HistoryStore, log zerolog.Logger) plugin.Middleware {
	return WithCommandLoggerClock(store, log, time.Now)
}

// WithCommandLoggerClock is WithCommandLogger with an explicit clock.
func WithCommandLoggerClock(store HistoryStore, log zerolog.Logger, now func() time.Time) plugin.Middleware {
	return func(c plugin.Command) plugin.Command {
		name := c.Metadata().Name
		return plugin.Wrap(c, func(ctx context.Context, in *plugin.Interaction) error {
			at := now()
			err := c.Execute(ctx, in)

			record := storage.CommandHistoryRecord{
				ChannelID: in.ChannelID,
				UserID:    in.UserID,
				Username:  in.Username,
				Command:   name,
				Failed:    err != nil,
				Datetime:  at,
			}
			if e := store.AppendCommandToHistory(in.GuildID, record); e != nil {
				log.Warn().Err(e).Str("command", name).Msg("Failed to log command")
			}
			return err
		})
	}
}
