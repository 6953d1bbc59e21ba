package transaction

import (
	"testing"

	"github.com/edwinsyarief/prefabecs"
	"github.com/edwinsyarief/prefabecs/ids"
	"github.com/edwinsyarief/prefabecs/registry"
	"github.com/stretchr/testify/require"
)

type positionXY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type label struct {
	Name string `json:"name"`
}

func freshSet(t *testing.T) *registry.Set {
	t.Helper()
	prefabecs.ResetGlobalRegistry()
	return registry.New()
}

func TestDiffThenApplyReproducesDestination(t *testing.T) {
	set := freshSet(t)
	posReg, err := registry.Register[positionXY](set, ids.ComponentTypeUUID(ids.NewPrefabUUID()))
	require.NoError(t, err)
	labelReg, err := registry.Register[label](set, ids.ComponentTypeUUID(ids.NewPrefabUUID()))
	require.NoError(t, err)

	src := prefabecs.NewWorld()
	dst := prefabecs.NewWorld()
	srcE := src.CreateEntity()
	dstE := dst.CreateEntity()

	prefabecs.SetComponent(src, srcE, positionXY{X: 1, Y: 1})
	prefabecs.SetComponent(dst, dstE, positionXY{X: 5, Y: 1})
	prefabecs.SetComponent(dst, dstE, label{Name: "goblin"})

	tx, err := Diff(set, src, srcE, dst, dstE, false)
	require.NoError(t, err)
	require.Len(t, tx, 2)

	require.NoError(t, Apply(set, src, srcE, tx))

	gotPos, ok := prefabecs.GetComponent[positionXY](src, srcE)
	require.True(t, ok)
	require.Equal(t, positionXY{X: 5, Y: 1}, *gotPos)

	gotLabel, ok := prefabecs.GetComponent[label](src, srcE)
	require.True(t, ok)
	require.Equal(t, label{Name: "goblin"}, *gotLabel)

	_ = posReg
	_ = labelReg
}

func TestDiffRemoveThenApplyRemovesComponent(t *testing.T) {
	set := freshSet(t)
	_, err := registry.Register[label](set, ids.ComponentTypeUUID(ids.NewPrefabUUID()))
	require.NoError(t, err)

	src := prefabecs.NewWorld()
	dst := prefabecs.NewWorld()
	srcE := src.CreateEntity()
	dstE := dst.CreateEntity()
	prefabecs.SetComponent(src, srcE, label{Name: "ghost"})

	tx, err := Diff(set, src, srcE, dst, dstE, false)
	require.NoError(t, err)
	require.Len(t, tx, 1)
	require.Equal(t, registry.Remove, tx[0].Outcome)

	require.NoError(t, Apply(set, src, srcE, tx))
	require.False(t, prefabecs.HasComponent[label](src, srcE))
}

func TestApplyNoChangeIsNoopEvenWithStalePayload(t *testing.T) {
	set := freshSet(t)
	_, err := registry.Register[label](set, ids.ComponentTypeUUID(ids.NewPrefabUUID()))
	require.NoError(t, err)

	w := prefabecs.NewWorld()
	e := w.CreateEntity()
	prefabecs.SetComponent(w, e, label{Name: "keep-me"})

	tx := Transaction{{
		ComponentType: firstUUID(set),
		Outcome:       registry.NoChange,
		Payload:       []byte(`{"name":"should-be-ignored"}`),
	}}
	require.NoError(t, Apply(set, w, e, tx))

	got, ok := prefabecs.GetComponent[label](w, e)
	require.True(t, ok)
	require.Equal(t, label{Name: "keep-me"}, *got)
}

func firstUUID(set *registry.Set) ids.ComponentTypeUUID {
	return set.All()[0].UUID
}
