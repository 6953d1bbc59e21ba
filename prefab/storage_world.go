package prefab

import (
	"fmt"

	"github.com/edwinsyarief/prefabecs"
	"github.com/edwinsyarief/prefabecs/ids"
	"github.com/edwinsyarief/prefabecs/registry"
)

// PrefabRefRecord notes that one prefab instantiates another, as reported
// through Storage.AddPrefabRef.
type PrefabRefRecord struct {
	Parent ids.PrefabUUID
	Target ids.PrefabUUID
}

// WorldStorage is a reference Storage that realizes components directly
// into a single target World via the type registry, creating entities on
// first reference to their EntityUUID. It is deliberately simple: prefab
// references are recorded but not materialized from the referenced
// prefab's own document, matching this package's scope (the concrete
// asset/instancing pipeline that would resolve a PrefabRef into cloned
// entities is an external collaborator, not part of the structured
// deserializer).
type WorldStorage struct {
	Set      *registry.Set
	World    *prefabecs.World
	Entities map[ids.EntityUUID]prefabecs.Entity
	Refs     []PrefabRefRecord
}

// NewWorldStorage creates a WorldStorage writing into world using set's
// registrations.
func NewWorldStorage(set *registry.Set, world *prefabecs.World) *WorldStorage {
	return &WorldStorage{
		Set:      set,
		World:    world,
		Entities: make(map[ids.EntityUUID]prefabecs.Entity),
	}
}

func (s *WorldStorage) entityFor(id ids.EntityUUID) prefabecs.Entity {
	if e, ok := s.Entities[id]; ok {
		return e
	}
	e := s.World.CreateEntity()
	s.Entities[id] = e
	return e
}

// DeserializeComponent adds or overwrites componentType on entityID using
// the matching registration's AddFromStream op.
func (s *WorldStorage) DeserializeComponent(prefabID ids.PrefabUUID, entityID ids.EntityUUID, componentType ids.ComponentTypeUUID, dec registry.Decoder) error {
	reg, ok := s.Set.ByUUID(componentType)
	if !ok {
		return &Error{Kind: UnknownComponentType, Field: componentType.String()}
	}
	e := s.entityFor(entityID)
	if err := reg.AddFromStream(s.World, e, dec); err != nil {
		return &Error{Kind: PayloadParse, Field: "data", Cause: err}
	}
	return nil
}

// ApplyComponentDiff applies a field-level diff to an existing component.
// Per the registry's own contract, applying a diff to an entity that
// lacks the component is a programmer error: it panics rather than
// returning an error.
func (s *WorldStorage) ApplyComponentDiff(parentPrefab, refPrefab ids.PrefabUUID, entityID ids.EntityUUID, componentType ids.ComponentTypeUUID, dec registry.Decoder) error {
	reg, ok := s.Set.ByUUID(componentType)
	if !ok {
		return &Error{Kind: UnknownComponentType, Field: componentType.String()}
	}
	e := s.entityFor(entityID)
	if !hasComponent(s.World, e, reg) {
		panic(fmt.Sprintf("prefab: ApplyComponentDiff for component %s on entity without that component", componentType))
	}
	if err := reg.ApplyDiff(s.World, e, dec); err != nil {
		return &Error{Kind: PayloadParse, Field: "diff", Cause: err}
	}
	return nil
}

// AddPrefabRef records the reference; see the WorldStorage doc comment.
func (s *WorldStorage) AddPrefabRef(parentPrefab, targetPrefab ids.PrefabUUID) error {
	s.Refs = append(s.Refs, PrefabRefRecord{Parent: parentPrefab, Target: targetPrefab})
	return nil
}

func hasComponent(world *prefabecs.World, e prefabecs.Entity, reg *registry.Registration) bool {
	arch, _, ok := world.ArchetypeOf(e)
	if !ok {
		return false
	}
	return arch.HasComponent(reg.ComponentID)
}
