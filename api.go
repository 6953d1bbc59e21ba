package prefabecs

import "unsafe"

// AddComponent adds a zero-valued component of type T to e and returns a
// pointer to it. If e already has the component, it returns a pointer to
// the existing value. Returns (nil, false) if e is not alive.
func AddComponent[T any](w *World, e Entity) (*T, bool) {
	meta, ok := w.metaOf(e)
	if !ok {
		return nil, false
	}
	compID := RegisterComponent[T]()
	oldArch := meta.archetype

	if oldArch.mask.has(compID) {
		return componentPtr[T](oldArch, meta.index, compID), true
	}

	newMask := setMask(oldArch.mask, compID)
	newArch := w.getOrCreateArchetype(newMask)
	newIndex := w.moveRow(e, oldArch, meta.index, newArch)
	return componentPtr[T](newArch, newIndex, compID), true
}

// SetComponent sets e's component of type T to v, adding it first if
// necessary. Returns false if e is not alive.
func SetComponent[T any](w *World, e Entity, v T) bool {
	ptr, ok := AddComponent[T](w, e)
	if !ok {
		return false
	}
	*ptr = v
	return true
}

// GetComponent returns a pointer to e's component of type T, or
// (nil, false) if e is not alive or doesn't have that component.
func GetComponent[T any](w *World, e Entity) (*T, bool) {
	meta, ok := w.metaOf(e)
	if !ok {
		return nil, false
	}
	compID, ok := TryGetID[T]()
	if !ok || !meta.archetype.mask.has(compID) {
		return nil, false
	}
	return componentPtr[T](meta.archetype, meta.index, compID), true
}

// HasComponent reports whether e is alive and carries a component of type T.
func HasComponent[T any](w *World, e Entity) bool {
	meta, ok := w.metaOf(e)
	if !ok {
		return false
	}
	compID, ok := TryGetID[T]()
	return ok && meta.archetype.mask.has(compID)
}

// RemoveComponent removes e's component of type T, if present. Returns
// false only if e is not alive.
func RemoveComponent[T any](w *World, e Entity) bool {
	meta, ok := w.metaOf(e)
	if !ok {
		return false
	}
	compID, ok := TryGetID[T]()
	if !ok || !meta.archetype.mask.has(compID) {
		return true
	}
	newMask := unsetMask(meta.archetype.mask, compID)
	newArch := w.getOrCreateArchetype(newMask)
	w.moveRow(e, meta.archetype, meta.index, newArch)
	return true
}

func componentPtr[T any](arch *Archetype, index int, compID ComponentID) *T {
	slot := arch.getSlot(compID)
	size := int(SizeOf(compID))
	col := arch.componentData[slot]
	return (*T)(unsafe.Pointer(&col[index*size]))
}
