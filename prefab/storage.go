package prefab

import (
	"github.com/edwinsyarief/prefabecs/ids"
	"github.com/edwinsyarief/prefabecs/registry"
)

// Storage is the caller-owned sink the structured deserializer drives.
// Every call is fully qualified with the prefab/entity/component-type
// context the deserializer has assembled so far; Storage never has to
// track that context itself.
//
// DeserializeComponent and ApplyComponentDiff receive a live value
// decoder positioned exactly at the component's data or diff value. The
// JSON visitor passes a *json.Decoder; the YAML visitor passes the
// *yaml.Node holding that value; both satisfy registry.Decoder.
// Implementers MUST consume exactly one value from dec (typically via
// dec.Decode(&v) or by handing dec to a registry.Registration's
// AddFromStream/ApplyDiff) and must not read past it; the JSON visitor
// resumes tokenizing the enclosing object immediately afterward.
type Storage interface {
	// DeserializeComponent realizes component componentType on entity
	// entityID within prefab prefabID.
	DeserializeComponent(prefabID ids.PrefabUUID, entityID ids.EntityUUID, componentType ids.ComponentTypeUUID, dec registry.Decoder) error

	// ApplyComponentDiff applies a field-level diff to component
	// componentType on entity entityID, which originates from prefab
	// refPrefab but is being overridden from within parentPrefab.
	ApplyComponentDiff(parentPrefab, refPrefab ids.PrefabUUID, entityID ids.EntityUUID, componentType ids.ComponentTypeUUID, dec registry.Decoder) error

	// AddPrefabRef records that parentPrefab instantiates targetPrefab.
	AddPrefabRef(parentPrefab, targetPrefab ids.PrefabUUID) error
}

func wrapStorageErr(err error, field string) error {
	if err == nil {
		return nil
	}
	if perr, ok := err.(*Error); ok {
		return perr
	}
	return &Error{Kind: StorageRejected, Field: field, Cause: err}
}
