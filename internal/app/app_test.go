package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/keshon/dispatchbot/internal/dispatch"
	"github.com/keshon/dispatchbot/internal/plugin"
	"github.com/keshon/dispatchbot/internal/registry"
	"github.com/keshon/dispatchbot/internal/router"
	"github.com/keshon/dispatchbot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type fakeRemote struct {
	calls  int
	stored []*discordgo.ApplicationCommand
	err    error
}

func (r *fakeRemote) OverwriteCommands(_ context.Context, cmds []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	r.stored = cmds
	return cmds, nil
}

func (r *fakeRemote) Commands(context.Context) ([]*discordgo.ApplicationCommand, error) {
	return r.stored, nil
}

type fakeBus struct {
	mu        sync.Mutex
	listeners map[string][]router.Listener
}

func (b *fakeBus) On(event string, fn router.Listener) { b.add(event, fn) }

func (b *fakeBus) Once(event string, fn router.Listener) { b.add(event, fn) }

func (b *fakeBus) add(event string, fn router.Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[string][]router.Listener)
	}
	b.listeners[event] = append(b.listeners[event], fn)
}

func (b *fakeBus) emit(event string, payload any) {
	b.mu.Lock()
	ls := append([]router.Listener(nil), b.listeners[event]...)
	b.mu.Unlock()
	for _, fn := range ls {
		fn(context.Background(), payload)
	}
}

type hello struct{ name string }

func (h *hello) Metadata() plugin.CommandMetadata {
	return plugin.CommandMetadata{Name: h.name, Description: "Replies with hello!", Active: true}
}

func (h *hello) Execute(ctx context.Context, in *plugin.Interaction) error {
	return in.Reply(ctx, plugin.Response{Content: "Hello!"})
}

type readyCounter struct {
	mu    sync.Mutex
	count int
}

func (r *readyCounter) Metadata() plugin.EventMetadata {
	return plugin.EventMetadata{Event: plugin.EventReady, Once: true, Active: true}
}

func (r *readyCounter) Handle(context.Context, any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return nil
}

func TestStartWiresEverything(t *testing.T) {
	ready := &readyCounter{}
	src := plugin.StaticSource{
		plugin.CommandPlugin("commands/hello", func() plugin.Command { return &hello{name: "hello"} }),
		plugin.CommandPlugin("commands/pong", func() plugin.Command { return &hello{name: "pong"} }),
		plugin.EventPlugin("events/ready", func() plugin.EventHandler { return ready }),
	}
	remote := &fakeRemote{}
	bus := &fakeBus{}

	a, err := Start(context.Background(), Deps{Source: src, Remote: remote, Bus: bus, Log: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if remote.calls != 1 || len(remote.stored) != 2 {
		t.Errorf("publish calls=%d stored=%d", remote.calls, len(remote.stored))
	}
	if a.Events != 1 || a.Registry.Len() != 2 {
		t.Errorf("events=%d commands=%d", a.Events, a.Registry.Len())
	}

	bus.emit(plugin.EventReady, &discordgo.Ready{})
	bus.emit(plugin.EventReady, &discordgo.Ready{})
	if ready.count != 1 {
		t.Errorf("ready handled %d times", ready.count)
	}

	var reply plugin.Response
	in := &plugin.Interaction{
		Kind:        plugin.KindChatCommand,
		CommandName: "hello",
		UserID:      "u1",
		Replier: plugin.ReplierFunc(func(_ context.Context, r plugin.Response) error {
			reply = r
			return nil
		}),
	}
	bus.emit(plugin.EventInteractionCreate, in)
	a.Dispatcher.Wait()
	if reply.Content != "Hello!" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestStartFailsBeforePublishing(t *testing.T) {
	tests := []struct {
		name string
		src  plugin.Source
	}{
		{"duplicate names", plugin.StaticSource{
			plugin.CommandPlugin("commands/a", func() plugin.Command { return &hello{name: "hello"} }),
			plugin.CommandPlugin("commands/b", func() plugin.Command { return &hello{name: "hello"} }),
		}},
		{"invalid metadata", plugin.StaticSource{
			plugin.CommandPlugin("commands/a", func() plugin.Command { return &hello{} }),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{}
			bus := &fakeBus{}
			if _, err := Start(context.Background(), Deps{Source: tt.src, Remote: remote, Bus: bus, Log: zerolog.Nop()}); err == nil {
				t.Fatal("expected error")
			}
			if remote.calls != 0 {
				t.Error("remote was called")
			}
			if len(bus.listeners) != 0 {
				t.Error("bus subscriptions were made")
			}
		})
	}
}

func TestStartPublishFailure(t *testing.T) {
	remote := &fakeRemote{err: errors.New("401 unauthorized")}
	bus := &fakeBus{}
	src := plugin.StaticSource{plugin.CommandPlugin("commands/hello", func() plugin.Command { return &hello{name: "hello"} })}

	_, err := Start(context.Background(), Deps{Source: src, Remote: remote, Bus: bus, Log: zerolog.Nop()})
	var re *registry.RegistrationError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want RegistrationError", err)
	}
	if len(bus.listeners) != 0 {
		t.Error("subscribed after a failed publish")
	}
}

func TestStartRecordsHistory(t *testing.T) {
	store, err := storage.New(t.TempDir() + "/datastore.json")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	bus := &fakeBus{}
	src := plugin.StaticSource{plugin.CommandPlugin("commands/hello", func() plugin.Command { return &hello{name: "hello"} })}
	a, err := Start(context.Background(), Deps{
		Source:   src,
		Remote:   &fakeRemote{},
		Bus:      bus,
		History:  store,
		Log:      zerolog.Nop(),
		Dispatch: dispatch.Options{MaxConcurrent: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	nop := plugin.ReplierFunc(func(context.Context, plugin.Response) error { return nil })
	bus.emit(plugin.EventInteractionCreate, &plugin.Interaction{Kind: plugin.KindChatCommand, CommandName: "hello", UserID: "u1", GuildID: "g1", Replier: nop})
	a.Dispatcher.Wait()

	history, err := store.FetchCommandHistory("g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Command != "hello" || history[0].UserID != "u1" {
		t.Errorf("history = %+v", history)
	}
}

func TestDrainIdleDispatcher(t *testing.T) {
	d := dispatch.New(registry.New(), nil, zerolog.Nop(), dispatch.Options{})
	if err := drain(d, time.Millisecond); err != nil {
		t.Fatalf("idle dispatcher: %v", err)
	}
}
