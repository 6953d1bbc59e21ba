package prefabecs

// Archetype holds column storage for every entity sharing one exact
// component-type set. Each column is a flat byte slice of back-to-back
// component values; entity i's value for column c lives at
// componentData[c][i*size : (i+1)*size].
type Archetype struct {
	mask          maskType               // component set this archetype stores
	componentIDs  []ComponentID          // ascending list of component IDs present
	componentData [][]byte               // one byte column per componentIDs entry
	entities      []Entity               // entities in storage order
	slots         [maxComponentTypes]int // componentID -> index into componentIDs/componentData, or -1
	index         int                    // position in World.archetypesList
}

// getSlot finds the column index of a component ID in this archetype, or
// -1 if the archetype does not store that component.
func (a *Archetype) getSlot(id ComponentID) int {
	return a.slots[id]
}

// ComponentIDs returns the component IDs stored by this archetype, in
// column order.
func (a *Archetype) ComponentIDs() []ComponentID {
	return a.componentIDs
}

// Entities returns the entities stored by this archetype, in row order.
func (a *Archetype) Entities() []Entity {
	return a.entities
}

// Len returns the number of entities (rows) in this archetype.
func (a *Archetype) Len() int {
	return len(a.entities)
}

// Column returns the raw byte column for component id, or nil if this
// archetype does not store that component. The returned slice aliases the
// archetype's storage; the registry package uses it directly as the "raw
// pointer" the component operations expect.
func (a *Archetype) Column(id ComponentID) []byte {
	slot := a.getSlot(id)
	if slot < 0 {
		return nil
	}
	return a.componentData[slot]
}

// HasComponent reports whether this archetype stores component id.
func (a *Archetype) HasComponent(id ComponentID) bool {
	return a.mask.has(id)
}
