// Package app wires the dispatcher core to its collaborators and runs the bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/keshon/dispatchbot/internal/config"
	"github.com/keshon/dispatchbot/internal/cooldown"
	"github.com/keshon/dispatchbot/internal/discord"
	"github.com/keshon/dispatchbot/internal/dispatch"
	"github.com/keshon/dispatchbot/internal/middleware"
	"github.com/keshon/dispatchbot/internal/plugin"
	"github.com/keshon/dispatchbot/internal/plugins"
	"github.com/keshon/dispatchbot/internal/registry"
	"github.com/keshon/dispatchbot/internal/router"
	"github.com/keshon/dispatchbot/internal/storage"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long in-flight handlers may run after a stop signal.
const shutdownTimeout = 10 * time.Second

// Deps are the collaborators Start wires together.
type Deps struct {
	Source plugin.Source
	Remote registry.Remote
	Bus    router.Bus
	// History enables the usage log when set.
	History  middleware.HistoryStore
	Log      zerolog.Logger
	Dispatch dispatch.Options
}

// App is a started dispatcher.
type App struct {
	Registry   *registry.Registry
	Dispatcher *dispatch.Dispatcher
	// Events is the number of event plugins subscribed, the dispatcher excluded.
	Events int
}

// Start loads plugins, registers and publishes commands, then subscribes event plugins
// and the dispatcher to the bus. Every step must succeed before the next one runs.
func Start(ctx context.Context, deps Deps) (*App, error) {
	log := deps.Log

	set, err := plugin.NewLoader(log).Load(deps.Source)
	if err != nil {
		return nil, fmt.Errorf("load plugins: %w", err)
	}
	if deps.History != nil {
		set = set.WithMiddleware(middleware.WithCommandLogger(deps.History, log))
	}

	reg := registry.New()
	if err := reg.RegisterAll(set.Commands); err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}

	n, err := reg.Publish(ctx, deps.Remote)
	if err != nil {
		return nil, err
	}
	log.Info().Int("commands", n).Msgf("Registered: %d commands.", n)

	disp := dispatch.New(reg, cooldown.NewManager(), log, deps.Dispatch)
	r := router.New(log)
	events := r.SubscribeAll(set.Events, deps.Bus)
	r.Subscribe(disp, deps.Bus)

	return &App{Registry: reg, Dispatcher: disp, Events: events}, nil
}

// Run starts the bot described by cfg and blocks until ctx is done.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	var source plugin.Source = plugins.Catalog(plugins.Deps{
		QRServiceURL: cfg.QRServiceURL,
		HTTPClient:   &http.Client{Timeout: 15 * time.Second},
		Log:          log,
	})
	if cfg.PluginManifest != "" {
		m, err := plugin.LoadManifest(cfg.PluginManifest)
		if err != nil {
			return err
		}
		source = plugin.ManifestSource{Base: source, Manifest: m}
	}

	dg, err := discord.NewSession(cfg.DiscordToken, log)
	if err != nil {
		return err
	}
	appID, err := discord.AppID(dg, cfg.ApplicationID)
	if err != nil {
		return err
	}

	// Handlers keep their context until they have drained after ctx is done.
	handlerCtx, cancelHandlers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelHandlers()

	a, err := Start(ctx, Deps{
		Source:   source,
		Remote:   discord.NewRemote(dg, appID, cfg.GuildID),
		Bus:      discord.NewBus(handlerCtx, dg),
		History:  store,
		Log:      log,
		Dispatch: dispatch.Options{MaxConcurrent: cfg.MaxConcurrentHandlers},
	})
	if err != nil {
		return err
	}

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	log.Info().Int("events", a.Events).Msg("Gateway connected")

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received. Cleaning up...")

	g := new(errgroup.Group)
	g.Go(func() error {
		if err := dg.Close(); err != nil {
			return fmt.Errorf("close session: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer cancelHandlers()
		return drain(a.Dispatcher, shutdownTimeout)
	})
	return g.Wait()
}

var errDrainTimeout = errors.New("command handlers still running at shutdown")

func drain(d *dispatch.Dispatcher, timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return nil
	case <-t.C:
		return errDrainTimeout
	}
}
