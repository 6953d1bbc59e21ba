// Package prefabecs implements a small archetype-based entity-component-system
// core: entities, component columns grouped by archetype, and generic
// accessors for adding, reading, and removing components. It is the host
// runtime the registry, cooked serializer, and structured prefab
// deserializer packages drive; on its own it has no notion of prefabs,
// UUIDs, or serialization.
//
// Trimmed down from a full ECS: there's no memoized add/remove
// transition cache and no N-ary generic Query/Builder combinatorics,
// since this domain never runs a hot per-frame loop to amortize them
// against.
package prefabecs

// Entity is an opaque handle: a slot index plus a generation counter that
// invalidates stale handles after the slot is recycled.
type Entity struct {
	ID      uint32
	Version uint32
}

// entityMeta records where a live entity's components are stored.
type entityMeta struct {
	archetype *Archetype
	index     int
	version   uint32
}
