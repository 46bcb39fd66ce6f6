// Package plugins lists the bot's built-in command and event plugins.
package plugins

import (
	"net/http"

	"github.com/keshon/dispatchbot/internal/command/misc"
	"github.com/keshon/dispatchbot/internal/command/utility"
	"github.com/keshon/dispatchbot/internal/event"
	"github.com/keshon/dispatchbot/internal/plugin"
	"github.com/keshon/dispatchbot/pkg/retrylimit"

	"github.com/rs/zerolog"
)

// Deps holds what the built-in plugins need at construction.
type Deps struct {
	QRServiceURL string
	HTTPClient   *http.Client
	Log          zerolog.Logger
}

// Catalog returns the built-in plugins keyed by stable IDs, which plugin manifests
// refer to.
func Catalog(deps Deps) plugin.StaticSource {
	retry := retrylimit.DefaultConfig()
	retry.Log = deps.Log.With().Str("component", "qr").Logger()

	return plugin.StaticSource{
		plugin.CommandPlugin("commands/utility/hello", func() plugin.Command {
			return &utility.HelloCommand{}
		}),
		plugin.CommandPlugin("commands/utility/generateqr", func() plugin.Command {
			return utility.NewQRCommand(deps.QRServiceURL, deps.HTTPClient, retry)
		}),
		plugin.CommandPlugin("commands/misc/pong", func() plugin.Command {
			return &misc.PongCommand{}
		}),
		plugin.EventPlugin("events/ready", func() plugin.EventHandler {
			return &event.Ready{Log: deps.Log}
		}),
	}
}
