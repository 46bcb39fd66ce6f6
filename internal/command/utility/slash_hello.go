package utility

import (
	"context"

	"github.com/keshon/dispatchbot/internal/plugin"
)

type HelloCommand struct{}

func (c *HelloCommand) Metadata() plugin.CommandMetadata {
	return plugin.CommandMetadata{
		Name:        "hello",
		Description: "Replies with hello!",
		Cooldown:    plugin.CooldownSeconds(10),
		Active:      true,
	}
}

func (c *HelloCommand) Execute(ctx context.Context, in *plugin.Interaction) error {
	return in.Reply(ctx, plugin.Response{Content: "Hello!"})
}
