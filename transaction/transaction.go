// Package transaction records and replays component-level diffs between
// two entities, each possibly in a different world. A Record is the wire
// form of one registry.DiffOutcome: which component type, what happened,
// and (for Add/Change) the payload needed to reproduce it elsewhere.
package transaction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/edwinsyarief/prefabecs"
	"github.com/edwinsyarief/prefabecs/ids"
	"github.com/edwinsyarief/prefabecs/registry"
)

// Record is one component's diff outcome between a source and destination
// entity. Payload is nil for Remove and for a NoChange where neither entity
// has the component; a NoChange between two equal components (emitted only
// with includeNoChange) carries the empty field-level diff.
type Record struct {
	ComponentType ids.ComponentTypeUUID `json:"component_type"`
	Outcome       registry.DiffOutcome  `json:"outcome"`
	Payload       json.RawMessage       `json:"payload,omitempty"`
}

// Transaction is the full set of per-component diffs between two entities.
type Transaction []Record

// Diff compares every registered component type between (srcWorld,
// srcEntity) and (dstWorld, dstEntity) and returns one Record per type that
// is not NoChange. Pass includeNoChange to also emit NoChange records (used
// by tests asserting presence-matrix coverage).
func Diff(set *registry.Set, srcWorld *prefabecs.World, srcEntity prefabecs.Entity, dstWorld *prefabecs.World, dstEntity prefabecs.Entity, includeNoChange bool) (Transaction, error) {
	var tx Transaction
	for _, reg := range set.All() {
		var buf bytes.Buffer
		outcome, err := reg.Diff(json.NewEncoder(&buf), srcWorld, srcEntity, dstWorld, dstEntity)
		if err != nil {
			return nil, fmt.Errorf("transaction: diff component %s: %w", reg.UUID, err)
		}
		if outcome == registry.NoChange && !includeNoChange {
			continue
		}
		rec := Record{ComponentType: reg.UUID, Outcome: outcome}
		if buf.Len() > 0 {
			payload := make(json.RawMessage, buf.Len())
			copy(payload, buf.Bytes())
			rec.Payload = payload
		}
		tx = append(tx, rec)
	}
	return tx, nil
}

// Apply replays a Transaction onto (world, entity): Add components that
// were added, overwrite components that Changed, remove components that
// were Removed, and do nothing for NoChange.
func Apply(set *registry.Set, world *prefabecs.World, entity prefabecs.Entity, tx Transaction) error {
	for _, rec := range tx {
		if err := applyRecord(set, world, entity, rec); err != nil {
			return err
		}
	}
	return nil
}

func applyRecord(set *registry.Set, world *prefabecs.World, entity prefabecs.Entity, rec Record) error {
	reg, ok := set.ByUUID(rec.ComponentType)
	if !ok {
		return fmt.Errorf("transaction: unknown component type %s", rec.ComponentType)
	}

	switch rec.Outcome {
	case registry.NoChange:
		return nil

	case registry.Remove:
		reg.Remove(world, entity)
		return nil

	case registry.Add:
		dec := json.NewDecoder(bytes.NewReader(rec.Payload))
		if err := reg.AddFromStream(world, entity, dec); err != nil {
			return fmt.Errorf("transaction: add component %s: %w", rec.ComponentType, err)
		}
		return nil

	case registry.Change:
		if !prefabecsHasComponent(world, entity, reg) {
			// The destination never had this component to begin with
			// (e.g. applying a transaction recorded against a different
			// base entity): fall back to a full add from the change
			// payload's post-image isn't available here, since Change
			// payloads are field-diffs, not full values. Treat this as
			// a caller precondition violation.
			panic(fmt.Sprintf("transaction: Change outcome for component %s on entity without that component", rec.ComponentType))
		}
		dec := json.NewDecoder(bytes.NewReader(rec.Payload))
		if err := reg.ApplyDiff(world, entity, dec); err != nil {
			return fmt.Errorf("transaction: apply diff for component %s: %w", rec.ComponentType, err)
		}
		return nil

	default:
		return fmt.Errorf("transaction: unknown diff outcome %v for component %s", rec.Outcome, rec.ComponentType)
	}
}

func prefabecsHasComponent(world *prefabecs.World, entity prefabecs.Entity, reg *registry.Registration) bool {
	arch, idx, ok := world.ArchetypeOf(entity)
	if !ok {
		return false
	}
	_ = idx
	return arch.HasComponent(reg.ComponentID)
}
