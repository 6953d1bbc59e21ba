package prefab

import (
	"strings"
	"testing"

	"github.com/edwinsyarief/prefabecs"
	"github.com/edwinsyarief/prefabecs/ids"
	"github.com/edwinsyarief/prefabecs/registry"
	"github.com/stretchr/testify/require"
)

type healthComponent struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

func TestWorldStorageDeserializesComponentsIntoWorld(t *testing.T) {
	prefabecs.ResetGlobalRegistry()
	set := registry.New()
	healthReg, err := registry.Register[healthComponent](set, ids.ComponentTypeUUID(ids.NewPrefabUUID()))
	require.NoError(t, err)

	world := prefabecs.NewWorld()
	storage := NewWorldStorage(set, world)

	p1 := ids.NewPrefabUUID()
	e1 := ids.NewEntityUUID()
	doc := `{"id": "` + p1.String() + `", "objects": [
		{"Entity": {"id": "` + e1.String() + `", "components": [
			{"type": "` + healthReg.UUID.String() + `", "data": {"current": 7, "max": 10}}
		]}}
	]}`

	require.NoError(t, Deserialize(strings.NewReader(doc), storage))

	entity, ok := storage.Entities[e1]
	require.True(t, ok)
	got, ok := prefabecs.GetComponent[healthComponent](world, entity)
	require.True(t, ok)
	require.Equal(t, healthComponent{Current: 7, Max: 10}, *got)
}

func TestWorldStorageUnknownComponentTypeError(t *testing.T) {
	prefabecs.ResetGlobalRegistry()
	set := registry.New()
	world := prefabecs.NewWorld()
	storage := NewWorldStorage(set, world)

	p1 := ids.NewPrefabUUID()
	e1 := ids.NewEntityUUID()
	bogus := ids.NewPrefabUUID()
	doc := `{"id": "` + p1.String() + `", "objects": [
		{"Entity": {"id": "` + e1.String() + `", "components": [
			{"type": "` + bogus.String() + `", "data": 1}
		]}}
	]}`

	err := Deserialize(strings.NewReader(doc), storage)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, UnknownComponentType, perr.Kind)
}

func TestWorldStorageApplyDiffOverridesExistingComponent(t *testing.T) {
	prefabecs.ResetGlobalRegistry()
	set := registry.New()
	healthReg, err := registry.Register[healthComponent](set, ids.ComponentTypeUUID(ids.NewPrefabUUID()))
	require.NoError(t, err)

	world := prefabecs.NewWorld()
	storage := NewWorldStorage(set, world)
	e1 := ids.NewEntityUUID()
	entity := world.CreateEntity()
	storage.Entities[e1] = entity
	prefabecs.SetComponent(world, entity, healthComponent{Current: 10, Max: 10})

	p1 := ids.NewPrefabUUID()
	p2 := ids.NewPrefabUUID()
	doc := `{"id": "` + p2.String() + `", "objects": [
		{"PrefabRef": {"prefab_id": "` + p1.String() + `", "entity_overrides": [
			{"entity_id": "` + e1.String() + `", "component_overrides": [
				{"component_type": "` + healthReg.UUID.String() + `", "diff": {"current": 3}}
			]}
		]}}
	]}`

	require.NoError(t, Deserialize(strings.NewReader(doc), storage))

	got, ok := prefabecs.GetComponent[healthComponent](world, entity)
	require.True(t, ok)
	require.Equal(t, healthComponent{Current: 3, Max: 10}, *got)
}
