package plugin

import (
	"errors"
	"fmt"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Discord limits for chat command metadata.
const (
	maxNameLength        = 32
	maxDescriptionLength = 100
)

// Loader instantiates and validates plugins. Any failure aborts the whole load.
type Loader struct {
	log zerolog.Logger
}

// NewLoader returns a loader that reports skipped plugins to log.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{log: log.With().Str("component", "loader").Logger()}
}

// Load walks every descriptor of src and returns the active, validated plugins.
func (l *Loader) Load(src Source) (*Set, error) {
	descriptors, err := src.Descriptors()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate plugins: %w", err)
	}

	set := &Set{}
	for _, d := range descriptors {
		switch {
		case d.NewCommand != nil:
			entry, ok, err := l.loadCommand(d)
			if err != nil {
				return nil, err
			}
			if ok {
				set.Commands = append(set.Commands, entry)
			}
		case d.NewEvent != nil:
			h, ok, err := l.loadEvent(d)
			if err != nil {
				return nil, err
			}
			if ok {
				set.Events = append(set.Events, h)
			}
		default:
			return nil, &PluginInstantiationError{ID: d.ID, Err: errors.New("descriptor has no constructor")}
		}
	}

	l.log.Info().Int("commands", len(set.Commands)).Int("events", len(set.Events)).Msg("Plugins loaded")
	return set, nil
}

func (l *Loader) loadCommand(d Descriptor) (CommandEntry, bool, error) {
	c, err := instantiate(d.ID, d.NewCommand)
	if err != nil {
		return CommandEntry{}, false, err
	}

	meta, err := metadataOf(d.ID, c.Metadata)
	if err != nil {
		return CommandEntry{}, false, err
	}
	if meta.Name == "" {
		return CommandEntry{}, false, &InvalidMetadataError{ID: d.ID, Field: "name", Reason: "no command name was provided"}
	}
	if n := utf8.RuneCountInString(meta.Name); n > maxNameLength {
		return CommandEntry{}, false, &InvalidMetadataError{ID: d.ID, Field: "name", Reason: fmt.Sprintf("%d characters, limit is %d", n, maxNameLength)}
	}
	if meta.Description == "" {
		return CommandEntry{}, false, &InvalidMetadataError{ID: d.ID, Field: "description", Reason: "no command description was provided"}
	}
	if n := utf8.RuneCountInString(meta.Description); n > maxDescriptionLength {
		return CommandEntry{}, false, &InvalidMetadataError{ID: d.ID, Field: "description", Reason: fmt.Sprintf("%d characters, limit is %d", n, maxDescriptionLength)}
	}

	if !meta.Active {
		l.log.Info().Str("plugin", d.ID).Str("command", meta.Name).Msg("Command skipped")
		return CommandEntry{}, false, nil
	}

	cooldown, err := resolveCooldown(d.ID, meta.Cooldown)
	if err != nil {
		return CommandEntry{}, false, err
	}

	return CommandEntry{
		Name:        meta.Name,
		Description: meta.Description,
		Options:     meta.Options,
		Cooldown:    cooldown,
		Command:     c,
	}, true, nil
}

func (l *Loader) loadEvent(d Descriptor) (EventHandler, bool, error) {
	h, err := instantiate(d.ID, d.NewEvent)
	if err != nil {
		return nil, false, err
	}

	meta, err := metadataOf(d.ID, h.Metadata)
	if err != nil {
		return nil, false, err
	}
	if meta.Event == "" {
		return nil, false, &InvalidMetadataError{ID: d.ID, Field: "event", Reason: "no event name was provided"}
	}
	if !meta.Active {
		l.log.Info().Str("plugin", d.ID).Str("event", meta.Event).Msg("Event skipped")
		return nil, false, nil
	}
	return h, true, nil
}

func resolveCooldown(id string, c Cooldown) (time.Duration, error) {
	seconds, set := c.Seconds()
	switch {
	case !set || seconds == 0:
		return DefaultCooldown, nil
	case seconds < 0:
		return 0, &InvalidMetadataError{ID: id, Field: "cooldown", Reason: fmt.Sprintf("%d is not a positive number of seconds", seconds)}
	}
	return time.Duration(seconds) * time.Second, nil
}

// instantiate calls fn, turning a nil result (typed or not) or a panic into
// PluginInstantiationError.
func instantiate[T any](id string, fn func() T) (p T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PluginInstantiationError{ID: id, Err: fmt.Errorf("constructor panicked: %v", r)}
		}
	}()

	p = fn()
	if isNil(p) {
		return p, &PluginInstantiationError{ID: id, Err: errors.New("constructor returned nil")}
	}
	return p, nil
}

// metadataOf calls a plugin's Metadata, turning a panic into PluginInstantiationError.
func metadataOf[M any](id string, fn func() M) (meta M, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PluginInstantiationError{ID: id, Err: fmt.Errorf("metadata panicked: %v", r)}
		}
	}()
	return fn(), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
