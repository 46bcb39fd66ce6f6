package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Manifest overrides plugin declarations without recompiling, keyed by descriptor ID.
//
//	plugins:
//	  commands/utility/generateqr:
//	    cooldown: 30
//	  events/ready:
//	    active: false
type Manifest struct {
	Plugins map[string]Override `yaml:"plugins"`
}

// Override replaces individual metadata fields. Nil fields keep the plugin's value.
type Override struct {
	Active   *bool `yaml:"active"`
	Cooldown *int  `yaml:"cooldown"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest parses manifest YAML. Unknown keys are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse plugin manifest: %w", err)
	}
	return m, nil
}

// ManifestSource applies a manifest on top of another source.
type ManifestSource struct {
	Base     Source
	Manifest *Manifest
}

// Descriptors returns the base descriptors with overridden constructors. A manifest
// entry that matches no descriptor is an error.
func (s ManifestSource) Descriptors() ([]Descriptor, error) {
	base, err := s.Base.Descriptors()
	if err != nil {
		return nil, err
	}
	if s.Manifest == nil || len(s.Manifest.Plugins) == 0 {
		return base, nil
	}

	seen := make(map[string]bool, len(base))
	out := make([]Descriptor, 0, len(base))
	for _, d := range base {
		seen[d.ID] = true
		o, ok := s.Manifest.Plugins[d.ID]
		if !ok {
			out = append(out, d)
			continue
		}
		if d.NewEvent != nil && o.Cooldown != nil {
			return nil, &InvalidMetadataError{ID: d.ID, Field: "cooldown", Reason: "event plugins have no cooldown"}
		}
		out = append(out, o.apply(d))
	}

	var unknown []string
	for id := range s.Manifest.Plugins {
		if !seen[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("plugin manifest references unknown plugins: %v", unknown)
	}
	return out, nil
}

func (o Override) apply(d Descriptor) Descriptor {
	if newCommand := d.NewCommand; newCommand != nil {
		d.NewCommand = func() Command {
			c := newCommand()
			if isNil(c) {
				return nil
			}
			return &overriddenCommand{Command: c, o: o}
		}
	}
	if newEvent := d.NewEvent; newEvent != nil {
		d.NewEvent = func() EventHandler {
			h := newEvent()
			if isNil(h) {
				return nil
			}
			return &overriddenEvent{EventHandler: h, o: o}
		}
	}
	return d
}

type overriddenCommand struct {
	Command
	o Override
}

func (c *overriddenCommand) Metadata() CommandMetadata {
	meta := c.Command.Metadata()
	if c.o.Active != nil {
		meta.Active = *c.o.Active
	}
	if c.o.Cooldown != nil {
		meta.Cooldown = CooldownSeconds(*c.o.Cooldown)
	}
	return meta
}

func (c *overriddenCommand) Unwrap() Command { return c.Command }

type overriddenEvent struct {
	EventHandler
	o Override
}

func (e *overriddenEvent) Metadata() EventMetadata {
	meta := e.EventHandler.Metadata()
	if e.o.Active != nil {
		meta.Active = *e.o.Active
	}
	return meta
}
