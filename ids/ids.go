// Package ids defines the stable 16-byte identifiers used throughout the
// prefab pipeline: prefab identity, entity identity, and component-kind
// identity. All three share the same underlying representation so that a
// single parsing/formatting story (github.com/gofrs/uuid/v5) covers them.
package ids

import (
	"github.com/gofrs/uuid/v5"
)

// PrefabUUID identifies a prefab document.
type PrefabUUID [16]byte

// EntityUUID identifies an entity within a prefab; it survives instancing.
type EntityUUID [16]byte

// ComponentTypeUUID identifies a component kind across builds and processes.
type ComponentTypeUUID [16]byte

// Nil is the zero-valued UUID, useful as a sentinel for "no parent".
var Nil [16]byte

// NewPrefabUUID generates a fresh random prefab identifier.
func NewPrefabUUID() PrefabUUID {
	return PrefabUUID(uuid.Must(uuid.NewV4()))
}

// NewEntityUUID generates a fresh random entity identifier.
func NewEntityUUID() EntityUUID {
	return EntityUUID(uuid.Must(uuid.NewV4()))
}

// ParsePrefabUUID parses the canonical text form of a prefab UUID.
func ParsePrefabUUID(s string) (PrefabUUID, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return PrefabUUID{}, err
	}
	return PrefabUUID(u), nil
}

// ParseEntityUUID parses the canonical text form of an entity UUID.
func ParseEntityUUID(s string) (EntityUUID, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return EntityUUID{}, err
	}
	return EntityUUID(u), nil
}

// ParseComponentTypeUUID parses the canonical text form of a component type UUID.
func ParseComponentTypeUUID(s string) (ComponentTypeUUID, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return ComponentTypeUUID{}, err
	}
	return ComponentTypeUUID(u), nil
}

func (p PrefabUUID) String() string          { return uuid.UUID(p).String() }
func (e EntityUUID) String() string          { return uuid.UUID(e).String() }
func (c ComponentTypeUUID) String() string   { return uuid.UUID(c).String() }
func (p PrefabUUID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
func (p *PrefabUUID) UnmarshalText(text []byte) error {
	u, err := ParsePrefabUUID(string(text))
	if err != nil {
		return err
	}
	*p = u
	return nil
}
func (e EntityUUID) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}
func (e *EntityUUID) UnmarshalText(text []byte) error {
	u, err := ParseEntityUUID(string(text))
	if err != nil {
		return err
	}
	*e = u
	return nil
}
func (c ComponentTypeUUID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
func (c *ComponentTypeUUID) UnmarshalText(text []byte) error {
	u, err := ParseComponentTypeUUID(string(text))
	if err != nil {
		return err
	}
	*c = u
	return nil
}
