// Package registry is the type-erased component vtable: for every
// component type T the application cares about, Register[T] builds one
// Registration holding closures that already know T, so every later call
// the prefab and cooked packages make is a plain function call with no
// per-call type switch. This is the same shape as building a table of
// function pointers once per type and never branching on a type tag
// again. Diff and ApplyDiff still use reflection on each call, to compare
// and patch individual struct fields.
package registry

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/edwinsyarief/prefabecs"
	"github.com/edwinsyarief/prefabecs/ids"
	"github.com/edwinsyarief/prefabecs/logx"
)

// Registration holds everything the prefab pipeline needs to treat one
// component type uniformly: its stable identity, its host-ECS identity, and
// the twelve operations a caller can perform on it without ever naming T.
type Registration struct {
	UUID        ids.ComponentTypeUUID
	Type        reflect.Type
	TypeName    string
	ComponentID prefabecs.ComponentID
	Size        uintptr

	// RegisterLayout ensures T is registered with the host ECS's global
	// component-type table and returns its ComponentID. Safe to call
	// repeatedly; only the first call per type has an effect.
	RegisterLayout func() prefabecs.ComponentID

	// SerializeOne encodes a single entity's component value. Returns an
	// error (not a panic) if the entity lacks the component, since callers
	// that aren't sure an entity has a component use this to find out.
	SerializeOne func(enc Encoder, w *prefabecs.World, e prefabecs.Entity) error

	// SerializeSlice encodes every value in an archetype's column for this
	// component, in row order, as a single array.
	SerializeSlice func(enc Encoder, arch *prefabecs.Archetype) error

	// DeserializeOne decodes one component value and returns it as an
	// owned, untyped byte buffer of exactly Size bytes. The caller
	// memcopies the buffer into archetype storage directly; no destructor
	// or finalizer runs on the buffer when it is discarded.
	DeserializeOne func(dec Decoder) ([]byte, error)

	// DeserializeSlice decodes count component values and returns them as
	// one owned byte buffer of count*Size bytes, laid out exactly as an
	// archetype column would be.
	DeserializeSlice func(dec Decoder, count int) ([]byte, error)

	// SerializeSingle encodes a single entity's component value, like
	// SerializeOne, but it is a programmer error to call it for an entity
	// that doesn't have the component: it panics rather than returning an
	// error, for callers that have already established presence.
	SerializeSingle func(enc Encoder, w *prefabecs.World, e prefabecs.Entity)

	// AddDefault adds a zero-valued component to an entity.
	AddDefault func(w *prefabecs.World, e prefabecs.Entity)

	// AddFromStream decodes one component value directly onto an entity,
	// adding the component if necessary. The decoder is handed over
	// in-place: it is the caller's live stream position, not a copy, so a
	// component whose own deserialization depends on sibling data further
	// in the stream can still be parsed by whatever reads next.
	AddFromStream func(w *prefabecs.World, e prefabecs.Entity, dec Decoder) error

	// Remove removes the component from an entity, if present.
	Remove func(w *prefabecs.World, e prefabecs.Entity)

	// Diff compares a component across two (world, entity) pairs and
	// reports the outcome. Add encodes the full destination value; when both
	// sides have the component it encodes the field-level diff for Change
	// and for an equal NoChange alike (empty in that case); Remove and a
	// NoChange with neither side present encode nothing.
	Diff func(enc Encoder, srcWorld *prefabecs.World, srcEntity prefabecs.Entity, dstWorld *prefabecs.World, dstEntity prefabecs.Entity) (DiffOutcome, error)

	// ApplyDiff applies a Change payload produced by Diff onto an entity
	// that already has the component. It is a programmer error to call it
	// for an entity that lacks the component: it panics.
	ApplyDiff func(w *prefabecs.World, e prefabecs.Entity, dec Decoder) error

	// CloneRange bulk-copies count component values from one archetype's
	// column into another's, starting at the given row offsets.
	CloneRange func(dst *prefabecs.Archetype, dstStart int, src *prefabecs.Archetype, srcStart int, count int)
}

// Set is a collection of Registrations, indexed by both stable UUID and
// runtime reflect.Type. A Set starts open for registration; Freeze makes
// later Add calls fail, matching the pipeline's "write once at startup,
// read-only after" lifecycle.
type Set struct {
	mu         sync.RWMutex
	freezeOnce sync.Once
	frozen     bool
	regs       []*Registration
	byUUID     map[ids.ComponentTypeUUID]*Registration
	byType     map[reflect.Type]*Registration
	byCompID   map[prefabecs.ComponentID]*Registration
	log        *logx.Logger
}

// New creates an empty, open Set that logs to logx.Default().
func New() *Set {
	return &Set{
		byUUID:   make(map[ids.ComponentTypeUUID]*Registration),
		byType:   make(map[reflect.Type]*Registration),
		byCompID: make(map[prefabecs.ComponentID]*Registration),
		log:      logx.Default(),
	}
}

// WithLogger replaces the Set's logger. Safe to call before any
// registration; not safe to call concurrently with Add.
func (s *Set) WithLogger(l *logx.Logger) *Set {
	s.log = l
	return s
}

var defaultSet = New()

// Default returns the process-wide default Set. Most applications register
// every component type into this one set at startup.
func Default() *Set {
	return defaultSet
}

// Add inserts reg into the set. It fails if the set is frozen, or if a
// registration already exists for reg's UUID or Type.
func (s *Set) Add(reg *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return fmt.Errorf("registry: set is frozen, cannot register %s", reg.TypeName)
	}
	if _, exists := s.byUUID[reg.UUID]; exists {
		return fmt.Errorf("registry: duplicate component type UUID %s (type %s)", reg.UUID, reg.TypeName)
	}
	if _, exists := s.byType[reg.Type]; exists {
		return fmt.Errorf("registry: type %s already registered under a different UUID", reg.TypeName)
	}

	s.byUUID[reg.UUID] = reg
	s.byType[reg.Type] = reg
	s.byCompID[reg.ComponentID] = reg
	s.regs = append(s.regs, reg)
	registrationsTotal.Inc()
	s.log.Debugf("registry: registered %s as %s", reg.TypeName, reg.UUID)
	return nil
}

// ByComponentID looks up a Registration by its host-ECS ComponentID.
func (s *Set) ByComponentID(id prefabecs.ComponentID) (*Registration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byCompID[id]
	lookupTotal.WithLabelValues(lookupResult(ok)).Inc()
	return r, ok
}

// Freeze prevents any further registrations. Idempotent.
func (s *Set) Freeze() {
	s.freezeOnce.Do(func() {
		s.mu.Lock()
		s.frozen = true
		n := len(s.regs)
		s.mu.Unlock()
		s.log.Infof("registry: frozen with %d component type(s) registered", n)
	})
}

// Frozen reports whether Freeze has been called.
func (s *Set) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// ByUUID looks up a Registration by its stable component-type UUID.
func (s *Set) ByUUID(u ids.ComponentTypeUUID) (*Registration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byUUID[u]
	lookupTotal.WithLabelValues(lookupResult(ok)).Inc()
	return r, ok
}

// ByType looks up a Registration by reflect.Type.
func (s *Set) ByType(t reflect.Type) (*Registration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byType[t]
	lookupTotal.WithLabelValues(lookupResult(ok)).Inc()
	return r, ok
}

// All returns every Registration in the set, in registration order.
func (s *Set) All() []*Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Registration, len(s.regs))
	copy(out, s.regs)
	return out
}

// Register builds a Registration for component type T, identified by the
// given stable UUID, and adds it to set. It is the Go analogue of
// constructing a vtable once per type: every closure below captures T
// exactly once, here, and never branches on it again.
func Register[T any](set *Set, uuid ids.ComponentTypeUUID) (*Registration, error) {
	var zero T
	t := reflect.TypeOf(zero)
	isStruct := t.Kind() == reflect.Struct

	compID := prefabecs.RegisterComponent[T]()
	size := prefabecs.SizeOf(compID)

	reg := &Registration{
		UUID:        uuid,
		Type:        t,
		TypeName:    t.String(),
		ComponentID: compID,
		Size:        size,
	}

	reg.RegisterLayout = func() prefabecs.ComponentID {
		return prefabecs.RegisterComponent[T]()
	}

	reg.SerializeOne = func(enc Encoder, w *prefabecs.World, e prefabecs.Entity) error {
		v, ok := prefabecs.GetComponent[T](w, e)
		if !ok {
			return fmt.Errorf("registry: entity has no component %s", t)
		}
		return enc.Encode(v)
	}

	reg.SerializeSlice = func(enc Encoder, arch *prefabecs.Archetype) error {
		n := arch.Len()
		col := arch.Column(compID)
		if n == 0 || col == nil {
			return enc.Encode([]T{})
		}
		values := unsafe.Slice((*T)(unsafe.Pointer(&col[0])), n)
		return enc.Encode(values)
	}

	reg.DeserializeOne = func(dec Decoder) ([]byte, error) {
		var v T
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		buf := make([]byte, size)
		if size > 0 {
			*(*T)(unsafe.Pointer(&buf[0])) = v
		}
		return buf, nil
	}

	reg.DeserializeSlice = func(dec Decoder, count int) ([]byte, error) {
		var vs []T
		if err := dec.Decode(&vs); err != nil {
			return nil, err
		}
		if len(vs) != count {
			return nil, fmt.Errorf("registry: expected %d %s values, got %d", count, t, len(vs))
		}
		buf := make([]byte, len(vs)*int(size))
		if len(vs) > 0 && size > 0 {
			dst := unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), len(vs))
			copy(dst, vs)
		}
		return buf, nil
	}

	reg.SerializeSingle = func(enc Encoder, w *prefabecs.World, e prefabecs.Entity) {
		v, ok := prefabecs.GetComponent[T](w, e)
		if !ok {
			panic(fmt.Sprintf("registry: SerializeSingle called on entity with no component %s", t))
		}
		if err := enc.Encode(v); err != nil {
			panic(err)
		}
	}

	reg.AddDefault = func(w *prefabecs.World, e prefabecs.Entity) {
		prefabecs.AddComponent[T](w, e)
	}

	reg.AddFromStream = func(w *prefabecs.World, e prefabecs.Entity, dec Decoder) error {
		var v T
		if err := dec.Decode(&v); err != nil {
			return err
		}
		prefabecs.SetComponent[T](w, e, v)
		return nil
	}

	reg.Remove = func(w *prefabecs.World, e prefabecs.Entity) {
		prefabecs.RemoveComponent[T](w, e)
	}

	reg.Diff = func(enc Encoder, srcWorld *prefabecs.World, srcEntity prefabecs.Entity, dstWorld *prefabecs.World, dstEntity prefabecs.Entity) (DiffOutcome, error) {
		srcHas := prefabecs.HasComponent[T](srcWorld, srcEntity)
		dstHas := prefabecs.HasComponent[T](dstWorld, dstEntity)

		switch {
		case !srcHas && !dstHas:
			diffTotal.WithLabelValues(NoChange.String()).Inc()
			return NoChange, nil

		case !srcHas && dstHas:
			v, _ := prefabecs.GetComponent[T](dstWorld, dstEntity)
			diffTotal.WithLabelValues(Add.String()).Inc()
			return Add, enc.Encode(v)

		case srcHas && !dstHas:
			diffTotal.WithLabelValues(Remove.String()).Inc()
			return Remove, nil

		default:
			srcV, _ := prefabecs.GetComponent[T](srcWorld, srcEntity)
			dstV, _ := prefabecs.GetComponent[T](dstWorld, dstEntity)
			equal := reflect.DeepEqual(*srcV, *dstV)
			outcome := Change
			if equal {
				outcome = NoChange
			}
			diffTotal.WithLabelValues(outcome.String()).Inc()

			if !isStruct {
				return outcome, enc.Encode(dstV)
			}
			fields, err := diffStruct(*srcV, *dstV)
			if err != nil {
				return outcome, err
			}
			return outcome, enc.Encode(fields)
		}
	}

	reg.ApplyDiff = func(w *prefabecs.World, e prefabecs.Entity, dec Decoder) error {
		ptr, ok := prefabecs.GetComponent[T](w, e)
		if !ok {
			panic(fmt.Sprintf("registry: ApplyDiff called on entity with no component %s", t))
		}
		if !isStruct {
			return dec.Decode(ptr)
		}
		var fields map[string]json.RawMessage
		if err := dec.Decode(&fields); err != nil {
			return err
		}
		return applyStructDiff(ptr, fields)
	}

	reg.CloneRange = func(dst *prefabecs.Archetype, dstStart int, src *prefabecs.Archetype, srcStart int, count int) {
		if count == 0 {
			return
		}
		srcCol := src.Column(compID)
		dstCol := dst.Column(compID)
		srcVals := unsafe.Slice((*T)(unsafe.Pointer(&srcCol[srcStart*int(size)])), count)
		dstVals := unsafe.Slice((*T)(unsafe.Pointer(&dstCol[dstStart*int(size)])), count)
		copy(dstVals, srcVals)
	}

	if err := set.Add(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
