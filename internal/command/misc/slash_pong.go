package misc

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/dispatchbot/internal/plugin"
)

// PongCommand reports the gateway heartbeat latency.
type PongCommand struct {
	// Latency overrides the session heartbeat latency when set.
	Latency func() time.Duration
}

func (c *PongCommand) Metadata() plugin.CommandMetadata {
	return plugin.CommandMetadata{
		Name:        "pong",
		Description: "Replies with pong!",
		Cooldown:    plugin.CooldownSeconds(10),
		Active:      true,
	}
}

func (c *PongCommand) Execute(ctx context.Context, in *plugin.Interaction) error {
	var latency time.Duration
	switch {
	case c.Latency != nil:
		latency = c.Latency()
	case in.Session != nil:
		latency = in.Session.HeartbeatLatency()
	}
	return in.Reply(ctx, plugin.Response{Content: fmt.Sprintf("Pong: %dms!", latency.Milliseconds())})
}
