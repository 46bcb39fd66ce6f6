package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keshon/dispatchbot/internal/plugin"
	"github.com/keshon/dispatchbot/internal/storage"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

type memoryStore struct {
	records map[string][]storage.CommandHistoryRecord
	err     error
}

func (m *memoryStore) AppendCommandToHistory(guildID string, r storage.CommandHistoryRecord) error {
	if m.err != nil {
		return m.err
	}
	if m.records == nil {
		m.records = make(map[string][]storage.CommandHistoryRecord)
	}
	m.records[guildID] = append(m.records[guildID], r)
	return nil
}

type echo struct{ err error }

func (echo) Metadata() plugin.CommandMetadata {
	return plugin.CommandMetadata{Name: "hello", Description: "Replies with hello!", Active: true}
}

func (e echo) Execute(context.Context, *plugin.Interaction) error { return e.err }

var at = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return at }

func TestCommandLoggerRecords(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		failed bool
	}{
		{"success", nil, false},
		{"failure", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			c := plugin.Apply(echo{err: tt.err}, WithCommandLoggerClock(store, zerolog.Nop(), clock))

			in := &plugin.Interaction{GuildID: "g1", ChannelID: "c1", UserID: "u1", Username: "alice"}
			if err := c.Execute(context.Background(), in); !errors.Is(err, tt.err) {
				t.Fatalf("Execute = %v, want %v", err, tt.err)
			}

			want := []storage.CommandHistoryRecord{{
				ChannelID: "c1", UserID: "u1", Username: "alice", Command: "hello", Failed: tt.failed, Datetime: at,
			}}
			if diff := cmp.Diff(want, store.records["g1"]); diff != "" {
				t.Errorf("records (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommandLoggerKeepsMetadataAndRoot(t *testing.T) {
	inner := echo{}
	c := plugin.Apply(inner, WithCommandLogger(&memoryStore{}, zerolog.Nop()))

	if got := c.Metadata().Name; got != "hello" {
		t.Errorf("Metadata().Name = %q", got)
	}
	if plugin.Root(c) != plugin.Command(inner) {
		t.Error("Root did not reach the plugin")
	}
}

func TestCommandLoggerStoreFailureIsNotFatal(t *testing.T) {
	c := plugin.Apply(echo{}, WithCommandLogger(&memoryStore{err: errors.New("closed")}, zerolog.Nop()))
	if err := c.Execute(context.Background(), &plugin.Interaction{}); err != nil {
		t.Fatalf("Execute = %v, want nil", err)
	}
}
