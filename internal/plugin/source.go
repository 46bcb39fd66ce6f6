package plugin

// Descriptor describes one plugin a source can produce. Exactly one of NewCommand and
// NewEvent is expected to be set.
type Descriptor struct {
	// ID identifies the plugin within its source, e.g. "commands/utility/hello".
	ID         string
	NewCommand func() Command
	NewEvent   func() EventHandler
}

// CommandPlugin describes a command plugin built by fn.
func CommandPlugin(id string, fn func() Command) Descriptor {
	return Descriptor{ID: id, NewCommand: fn}
}

// EventPlugin describes an event plugin built by fn.
func EventPlugin(id string, fn func() EventHandler) Descriptor {
	return Descriptor{ID: id, NewEvent: fn}
}

// Source enumerates plugin descriptors.
type Source interface {
	Descriptors() ([]Descriptor, error)
}

// StaticSource is a compile-time list of plugin constructors.
type StaticSource []Descriptor

// Descriptors returns a copy of the list.
func (s StaticSource) Descriptors() ([]Descriptor, error) {
	out := make([]Descriptor, len(s))
	copy(out, s)
	return out, nil
}
