package discord

import (
	"context"
	"sync"

	"github.com/keshon/dispatchbot/internal/plugin"
	"github.com/keshon/dispatchbot/internal/router"

	"github.com/bwmarrin/discordgo"
)

// Bus subscribes listeners to gateway events by name ("READY", "INTERACTION_CREATE",
// ...). INTERACTION_CREATE payloads are delivered as *plugin.Interaction, everything
// else as the decoded discordgo struct.
type Bus struct {
	ctx context.Context
	dg  handlerAdder
}

// handlerAdder is the subscription half of *discordgo.Session.
type handlerAdder interface {
	AddHandler(handler interface{}) func()
}

// NewBus returns a bus over s. ctx is handed to every listener.
func NewBus(ctx context.Context, s *discordgo.Session) *Bus {
	return &Bus{ctx: ctx, dg: s}
}

// On delivers every occurrence of event to fn.
func (b *Bus) On(event string, fn router.Listener) {
	b.dg.AddHandler(func(s *discordgo.Session, e *discordgo.Event) {
		if e.Type != event {
			return
		}
		fn(b.ctx, payloadOf(s, e))
	})
}

// Once delivers the first occurrence of event to fn and then unsubscribes.
func (b *Bus) Once(event string, fn router.Listener) {
	var once sync.Once
	registered := make(chan struct{})

	var remove func()
	remove = b.dg.AddHandler(func(s *discordgo.Session, e *discordgo.Event) {
		if e.Type != event {
			return
		}
		once.Do(func() {
			<-registered
			go remove()
			fn(b.ctx, payloadOf(s, e))
		})
	})
	close(registered)
}

func payloadOf(s *discordgo.Session, e *discordgo.Event) any {
	if ic, ok := e.Struct.(*discordgo.InteractionCreate); ok && e.Type == plugin.EventInteractionCreate {
		return toInteraction(s, ic)
	}
	return e.Struct
}
