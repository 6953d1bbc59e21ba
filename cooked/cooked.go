// Package cooked serializes and deserializes a fully "cooked" world: a
// flat, already-resolved ECS world with no outstanding prefab references,
// written as a single document that lists every entity by its entity UUID
// (grouped per archetype) so it can be read back
// into a fresh World and still line up with external references to the
// same entities.
package cooked

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/edwinsyarief/prefabecs"
	"github.com/edwinsyarief/prefabecs/ids"
	"github.com/edwinsyarief/prefabecs/registry"
)

// CookedPrefab pairs a World with the stable EntityUUID of every entity in
// it. Entities created during Read that weren't named in the source
// document (there are none on read: every wire entity carries a UUID) are
// still recorded here, same as entities minted fresh during Write for any
// entity absent from the caller-supplied map.
type CookedPrefab struct {
	World    *prefabecs.World
	Entities map[ids.EntityUUID]prefabecs.Entity
}

type wireColumn = json.RawMessage

type wireArchetype struct {
	Components []ids.ComponentTypeUUID `json:"components"`
	Entities   []ids.EntityUUID        `json:"entities"`
	Columns    []wireColumn            `json:"columns"`
}

type wireWorld struct {
	Archetypes []wireArchetype `json:"archetypes"`
}

type wireDoc struct {
	World wireWorld `json:"world"`
}

// Write encodes prefab as JSON, following the set's registrations to
// serialize every archetype's component columns. Entities in
// prefab.World not present in prefab.Entities are assigned a fresh random
// EntityUUID for the purposes of this document only.
func Write(set *registry.Set, w io.Writer, prefab *CookedPrefab) error {
	reverse := make(map[prefabecs.Entity]ids.EntityUUID, len(prefab.Entities))
	for u, e := range prefab.Entities {
		reverse[e] = u
	}

	var doc wireDoc
	for _, arch := range prefab.World.Archetypes() {
		if arch.Len() == 0 {
			continue
		}

		wa := wireArchetype{
			Components: make([]ids.ComponentTypeUUID, 0, len(arch.ComponentIDs())),
			Entities:   make([]ids.EntityUUID, 0, arch.Len()),
			Columns:    make([]wireColumn, 0, len(arch.ComponentIDs())),
		}

		for _, e := range arch.Entities() {
			u, ok := reverse[e]
			if !ok {
				u = ids.NewEntityUUID()
			}
			wa.Entities = append(wa.Entities, u)
		}

		for _, compID := range arch.ComponentIDs() {
			reg, ok := set.ByComponentID(compID)
			if !ok {
				return fmt.Errorf("cooked: archetype has unregistered component id %d", compID)
			}
			wa.Components = append(wa.Components, reg.UUID)

			var buf bytes.Buffer
			if err := reg.SerializeSlice(json.NewEncoder(&buf), arch); err != nil {
				return fmt.Errorf("cooked: serialize component %s: %w", reg.UUID, err)
			}
			trimmed := bytes.TrimRight(buf.Bytes(), "\n")
			payload := make(json.RawMessage, len(trimmed))
			copy(payload, trimmed)
			wa.Columns = append(wa.Columns, payload)
		}

		doc.World.Archetypes = append(doc.World.Archetypes, wa)
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("cooked: encode document: %w", err)
	}
	return nil
}

// Read decodes a document written by Write into world, which must be
// empty of the component types involved (Read always creates fresh
// entities; it never mutates existing ones). It returns the EntityUUID of
// every entity it created.
func Read(set *registry.Set, r io.Reader, world *prefabecs.World) (*CookedPrefab, error) {
	var doc wireDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("cooked: decode document: %w", err)
	}

	result := &CookedPrefab{
		World:    world,
		Entities: make(map[ids.EntityUUID]prefabecs.Entity),
	}

	for _, wa := range doc.World.Archetypes {
		count := len(wa.Entities)
		if count == 0 {
			continue
		}

		compIDs := make([]prefabecs.ComponentID, len(wa.Components))
		regs := make([]*registry.Registration, len(wa.Components))
		for i, u := range wa.Components {
			reg, ok := set.ByUUID(u)
			if !ok {
				return nil, fmt.Errorf("cooked: unknown component type %s", u)
			}
			compIDs[i] = reg.RegisterLayout()
			regs[i] = reg
		}

		arch, start := world.NewArchetypeEntities(compIDs, count)

		for i, reg := range regs {
			if i >= len(wa.Columns) {
				return nil, fmt.Errorf("cooked: archetype missing column for component %s", reg.UUID)
			}
			buf, err := reg.DeserializeSlice(json.NewDecoder(bytes.NewReader(wa.Columns[i])), count)
			if err != nil {
				return nil, fmt.Errorf("cooked: deserialize component %s: %w", reg.UUID, err)
			}
			size := int(reg.Size)
			if len(buf) != count*size {
				return nil, fmt.Errorf("cooked: component %s: expected %d decoded values, got %d", reg.UUID, count, len(buf)/max(size, 1))
			}
			col := arch.Column(compIDs[i])
			copy(col[start*size:(start+count)*size], buf)
		}

		rows := arch.Entities()
		for k := 0; k < count; k++ {
			result.Entities[wa.Entities[k]] = rows[start+k]
		}
	}

	return result, nil
}
