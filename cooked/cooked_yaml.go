package cooked

import (
	"fmt"
	"io"

	"github.com/edwinsyarief/prefabecs"
	"github.com/edwinsyarief/prefabecs/ids"
	"github.com/edwinsyarief/prefabecs/registry"
	"gopkg.in/yaml.v3"
)

type wireArchetypeYAML struct {
	Components []ids.ComponentTypeUUID `yaml:"components"`
	Entities   []ids.EntityUUID        `yaml:"entities"`
	Columns    []yaml.Node             `yaml:"columns"`
}

type wireWorldYAML struct {
	Archetypes []wireArchetypeYAML `yaml:"archetypes"`
}

type wireDocYAML struct {
	World wireWorldYAML `yaml:"world"`
}

// WriteYAML is the YAML-encoded equivalent of Write, for the
// human-readable wire format. *yaml.Node implements both Encoder and
// Decoder directly, so it doubles as the in-memory column buffer: no
// intermediate byte encoding is needed the way JSON's RawMessage requires.
func WriteYAML(set *registry.Set, w io.Writer, prefab *CookedPrefab) error {
	reverse := make(map[prefabecs.Entity]ids.EntityUUID, len(prefab.Entities))
	for u, e := range prefab.Entities {
		reverse[e] = u
	}

	var doc wireDocYAML
	for _, arch := range prefab.World.Archetypes() {
		if arch.Len() == 0 {
			continue
		}

		wa := wireArchetypeYAML{
			Components: make([]ids.ComponentTypeUUID, 0, len(arch.ComponentIDs())),
			Entities:   make([]ids.EntityUUID, 0, arch.Len()),
			Columns:    make([]yaml.Node, 0, len(arch.ComponentIDs())),
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

			var node yaml.Node
			if err := reg.SerializeSlice(&node, arch); err != nil {
				return fmt.Errorf("cooked: serialize component %s: %w", reg.UUID, err)
			}
			wa.Columns = append(wa.Columns, node)
		}

		doc.World.Archetypes = append(doc.World.Archetypes, wa)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("cooked: encode document: %w", err)
	}
	return nil
}

// ReadYAML is the YAML-encoded equivalent of Read.
func ReadYAML(set *registry.Set, r io.Reader, world *prefabecs.World) (*CookedPrefab, error) {
	var doc wireDocYAML
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
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
			node := wa.Columns[i]
			buf, err := reg.DeserializeSlice(&node, count)
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
