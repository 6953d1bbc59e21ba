package prefabecs

import (
	"fmt"
	"reflect"
	"unsafe"
)

// ComponentID is the runtime-assigned slot a component type occupies in
// every archetype mask. It is process-local and has no relation to a
// component's stable UUID, which is the registry package's concern.
type ComponentID uint32

const (
	bitsPerWord            = 64
	maskWords              = 4
	maxComponentTypes      = maskWords * bitsPerWord
	defaultInitialCapacity = 1024
)

var (
	nextComponentID ComponentID
	typeToID        = make(map[reflect.Type]ComponentID, maxComponentTypes)
	idToType        = make(map[ComponentID]reflect.Type, maxComponentTypes)
	componentSizes  [maxComponentTypes]uintptr
)

// ResetGlobalRegistry resets the global component-type registry. Intended
// for tests that need a clean slate without a fresh process.
func ResetGlobalRegistry() {
	nextComponentID = 0
	typeToID = make(map[reflect.Type]ComponentID, maxComponentTypes)
	idToType = make(map[ComponentID]reflect.Type, maxComponentTypes)
	componentSizes = [maxComponentTypes]uintptr{}
}

// RegisterComponent registers a component type and returns its ComponentID,
// assigning one on first use. It panics once maxComponentTypes distinct
// component types have been registered in this process.
func RegisterComponent[T any]() ComponentID {
	var t T
	compType := reflect.TypeOf(t)

	if id, ok := typeToID[compType]; ok {
		return id
	}

	if int(nextComponentID) >= maxComponentTypes {
		panic(fmt.Sprintf("prefabecs: cannot register component %s: maximum number of component types (%d) reached", compType.Name(), maxComponentTypes))
	}

	id := nextComponentID
	typeToID[compType] = id
	idToType[id] = compType
	componentSizes[id] = unsafe.Sizeof(t)
	nextComponentID++
	return id
}

// GetID returns the ComponentID for T. It panics if T was never registered.
func GetID[T any]() ComponentID {
	var zero T
	typ := reflect.TypeOf(zero)
	id, ok := typeToID[typ]
	if !ok {
		panic(fmt.Sprintf("prefabecs: component type %s not registered", typ))
	}
	return id
}

// TryGetID returns the ComponentID for T without panicking.
func TryGetID[T any]() (ComponentID, bool) {
	var zero T
	typ := reflect.TypeOf(zero)
	id, ok := typeToID[typ]
	return id, ok
}

// TypeOf returns the reflect.Type a ComponentID was registered with.
func TypeOf(id ComponentID) (reflect.Type, bool) {
	t, ok := idToType[id]
	return t, ok
}

// SizeOf returns the byte size of the component type registered under id.
func SizeOf(id ComponentID) uintptr {
	return componentSizes[id]
}
