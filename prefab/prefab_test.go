package prefab

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/edwinsyarief/prefabecs/ids"
	"github.com/edwinsyarief/prefabecs/registry"
	"github.com/stretchr/testify/require"
)

type deserializeCall struct {
	prefab    ids.PrefabUUID
	entity    ids.EntityUUID
	compType  ids.ComponentTypeUUID
	dataValue json.RawMessage
}

type applyDiffCall struct {
	parent, ref ids.PrefabUUID
	entity      ids.EntityUUID
	compType    ids.ComponentTypeUUID
	diffValue   json.RawMessage
}

type addRefCall struct {
	parent, target ids.PrefabUUID
}

type spyStorage struct {
	deserializeCalls []deserializeCall
	applyDiffCalls   []applyDiffCall
	addRefCalls      []addRefCall
}

func (s *spyStorage) DeserializeComponent(prefabID ids.PrefabUUID, entityID ids.EntityUUID, componentType ids.ComponentTypeUUID, dec registry.Decoder) error {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	s.deserializeCalls = append(s.deserializeCalls, deserializeCall{prefabID, entityID, componentType, raw})
	return nil
}

func (s *spyStorage) ApplyComponentDiff(parentPrefab, refPrefab ids.PrefabUUID, entityID ids.EntityUUID, componentType ids.ComponentTypeUUID, dec registry.Decoder) error {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	s.applyDiffCalls = append(s.applyDiffCalls, applyDiffCall{parentPrefab, refPrefab, entityID, componentType, raw})
	return nil
}

func (s *spyStorage) AddPrefabRef(parentPrefab, targetPrefab ids.PrefabUUID) error {
	s.addRefCalls = append(s.addRefCalls, addRefCall{parentPrefab, targetPrefab})
	return nil
}

func TestS1EmptyPrefab(t *testing.T) {
	spy := &spyStorage{}
	doc := `{"id": "` + ids.NewPrefabUUID().String() + `", "objects": []}`
	require.NoError(t, Deserialize(strings.NewReader(doc), spy))
	require.Empty(t, spy.deserializeCalls)
	require.Empty(t, spy.applyDiffCalls)
	require.Empty(t, spy.addRefCalls)
}

func TestS2SingleEntitySingleComponent(t *testing.T) {
	spy := &spyStorage{}
	p1 := ids.NewPrefabUUID()
	e1 := ids.NewEntityUUID()
	c1 := ids.ComponentTypeUUID(ids.NewPrefabUUID())

	doc := `{"id": "` + p1.String() + `", "objects": [
		{"Entity": {"id": "` + e1.String() + `", "components": [
			{"type": "` + c1.String() + `", "data": 42}
		]}}
	]}`
	require.NoError(t, Deserialize(strings.NewReader(doc), spy))

	require.Len(t, spy.deserializeCalls, 1)
	call := spy.deserializeCalls[0]
	require.Equal(t, p1, call.prefab)
	require.Equal(t, e1, call.entity)
	require.Equal(t, c1, call.compType)
	require.JSONEq(t, "42", string(call.dataValue))
}

func TestS3PrefabRefWithOverride(t *testing.T) {
	spy := &spyStorage{}
	p1 := ids.NewPrefabUUID()
	p2 := ids.NewPrefabUUID()
	e1 := ids.NewEntityUUID()
	c1 := ids.ComponentTypeUUID(ids.NewPrefabUUID())

	doc := `{"id": "` + p2.String() + `", "objects": [
		{"PrefabRef": {"prefab_id": "` + p1.String() + `", "entity_overrides": [
			{"entity_id": "` + e1.String() + `", "component_overrides": [
				{"component_type": "` + c1.String() + `", "diff": {"x": 1}}
			]}
		]}}
	]}`
	require.NoError(t, Deserialize(strings.NewReader(doc), spy))

	require.Len(t, spy.addRefCalls, 1)
	require.Equal(t, addRefCall{parent: p2, target: p1}, spy.addRefCalls[0])

	require.Len(t, spy.applyDiffCalls, 1)
	call := spy.applyDiffCalls[0]
	require.Equal(t, p2, call.parent)
	require.Equal(t, p1, call.ref)
	require.Equal(t, e1, call.entity)
	require.Equal(t, c1, call.compType)
	require.JSONEq(t, `{"x":1}`, string(call.diffValue))
}

func TestS5DuplicateID(t *testing.T) {
	spy := &spyStorage{}
	p1 := ids.NewPrefabUUID().String()
	doc := `{"id": "` + p1 + `", "id": "` + p1 + `", "objects": []}`
	err := Deserialize(strings.NewReader(doc), spy)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, DuplicateField, perr.Kind)
	require.Equal(t, "id", perr.Field)
}

func TestS6OrderViolation(t *testing.T) {
	spy := &spyStorage{}
	doc := `{"objects": [], "id": "` + ids.NewPrefabUUID().String() + `"}`
	err := Deserialize(strings.NewReader(doc), spy)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, FieldOrder, perr.Kind)
	require.Equal(t, "id", perr.Field)
}

func TestFieldOrderEnforcedInEveryScope(t *testing.T) {
	p1 := ids.NewPrefabUUID().String()
	e1 := ids.NewEntityUUID().String()
	c1 := ids.NewPrefabUUID().String()

	cases := map[string]string{
		"entity": `{"id":"` + p1 + `","objects":[
			{"Entity": {"components": [], "id": "` + e1 + `"}}
		]}`,
		"component": `{"id":"` + p1 + `","objects":[
			{"Entity": {"id": "` + e1 + `", "components": [
				{"data": 1, "type": "` + c1 + `"}
			]}}
		]}`,
		"prefab_ref": `{"id":"` + p1 + `","objects":[
			{"PrefabRef": {"entity_overrides": [], "prefab_id": "` + p1 + `"}}
		]}`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			spy := &spyStorage{}
			err := Deserialize(strings.NewReader(doc), spy)
			require.Error(t, err)
			var perr *Error
			require.ErrorAs(t, err, &perr)
			require.Equal(t, FieldOrder, perr.Kind)
		})
	}
}

func TestUnknownVariantRejected(t *testing.T) {
	spy := &spyStorage{}
	doc := `{"id": "` + ids.NewPrefabUUID().String() + `", "objects": [
		{"Bogus": {}}
	]}`
	err := Deserialize(strings.NewReader(doc), spy)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, UnknownVariant, perr.Kind)
	require.Equal(t, "Bogus", perr.Field)
}

func TestMissingDataFieldIsError(t *testing.T) {
	spy := &spyStorage{}
	doc := `{"id": "` + ids.NewPrefabUUID().String() + `"}`
	err := Deserialize(strings.NewReader(doc), spy)
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, MissingField, perr.Kind)
	require.Equal(t, "objects", perr.Field)
}
