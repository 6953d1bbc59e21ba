// Package prefab walks a structured prefab document — a nested tree of
// entities, prefab references, and component or diff payloads — and
// drives a caller-supplied Storage sink with fully-qualified calls. It
// never builds an in-memory prefab of its own. Deserialize parses a JSON
// document exactly once, in one streaming pass; DeserializeYAML first
// decodes the whole YAML document into a yaml.Node tree and then walks it.
package prefab

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/edwinsyarief/prefabecs/ids"
)

// Deserialize parses a structured prefab document from r and drives
// storage with every entity, component, prefab-reference, and override it
// finds, in document order.
func Deserialize(r io.Reader, storage Storage) error {
	dec := json.NewDecoder(r)
	if err := parsePrefabScope(dec, storage); err != nil {
		return err
	}
	return nil
}

// scope walks one JSON object's fields, enforcing that identKey appears
// before dataKey, that neither repeats, and that no other key appears.
// handleIdent and handleData each consume exactly one JSON value from dec.
func scope(dec *json.Decoder, identKey, dataKey string, handleIdent, handleData func(*json.Decoder) error) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	identSeen := false
	dataSeen := false

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return payloadErr(identKey, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return &Error{Kind: PayloadParse, Field: identKey, Cause: fmt.Errorf("expected string key, got %v", keyTok)}
		}

		switch key {
		case identKey:
			if identSeen {
				return &Error{Kind: DuplicateField, Field: identKey}
			}
			if err := handleIdent(dec); err != nil {
				return err
			}
			identSeen = true

		case dataKey:
			if !identSeen {
				return &Error{Kind: FieldOrder, Field: identKey}
			}
			if dataSeen {
				return &Error{Kind: DuplicateField, Field: dataKey}
			}
			if err := handleData(dec); err != nil {
				return err
			}
			dataSeen = true

		default:
			return &Error{Kind: UnknownField, Field: key}
		}
	}

	if _, err := dec.Token(); err != nil { // closing '}'
		return payloadErr(dataKey, err)
	}

	if !identSeen {
		return &Error{Kind: MissingField, Field: identKey}
	}
	if !dataSeen {
		return &Error{Kind: MissingField, Field: dataKey}
	}
	return nil
}

// array walks a JSON array, calling element for every entry.
func array(dec *json.Decoder, element func(*json.Decoder) error) error {
	if err := expectDelim(dec, '['); err != nil {
		return err
	}
	for dec.More() {
		if err := element(dec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return payloadErr("", err)
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return payloadErr("", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != want {
		return &Error{Kind: PayloadParse, Cause: fmt.Errorf("expected %q, got %v", want, tok)}
	}
	return nil
}

func payloadErr(field string, cause error) error {
	return &Error{Kind: PayloadParse, Field: field, Cause: cause}
}

func decodePrefabUUID(dec *json.Decoder, out *ids.PrefabUUID) error {
	var s string
	if err := dec.Decode(&s); err != nil {
		return payloadErr("id", err)
	}
	u, err := ids.ParsePrefabUUID(s)
	if err != nil {
		return payloadErr("id", err)
	}
	*out = u
	return nil
}

func decodeEntityUUID(dec *json.Decoder, out *ids.EntityUUID) error {
	var s string
	if err := dec.Decode(&s); err != nil {
		return payloadErr("id", err)
	}
	u, err := ids.ParseEntityUUID(s)
	if err != nil {
		return payloadErr("id", err)
	}
	*out = u
	return nil
}

func decodeComponentTypeUUID(dec *json.Decoder, out *ids.ComponentTypeUUID) error {
	var s string
	if err := dec.Decode(&s); err != nil {
		return payloadErr("type", err)
	}
	u, err := ids.ParseComponentTypeUUID(s)
	if err != nil {
		return payloadErr("type", err)
	}
	*out = u
	return nil
}

// parsePrefabScope parses the Prefab scope: {id, objects}.
func parsePrefabScope(dec *json.Decoder, storage Storage) error {
	var prefabID ids.PrefabUUID
	return scope(dec, "id", "objects",
		func(dec *json.Decoder) error { return decodePrefabUUID(dec, &prefabID) },
		func(dec *json.Decoder) error {
			return array(dec, func(dec *json.Decoder) error {
				return parseObjectScope(dec, prefabID, storage)
			})
		})
}

// parseObjectScope parses one PrefabObject: an externally tagged,
// single-key map whose key names the variant ("Entity" or "PrefabRef") and
// whose value is that variant's own scope.
func parseObjectScope(dec *json.Decoder, prefabID ids.PrefabUUID, storage Storage) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	if !dec.More() {
		return &Error{Kind: MissingField, Field: "variant"}
	}

	tagTok, err := dec.Token()
	if err != nil {
		return payloadErr("variant", err)
	}
	tag, ok := tagTok.(string)
	if !ok {
		return &Error{Kind: PayloadParse, Field: "variant", Cause: fmt.Errorf("expected string variant tag, got %v", tagTok)}
	}

	switch tag {
	case "Entity":
		if err := parseEntityScope(dec, prefabID, storage); err != nil {
			return err
		}
	case "PrefabRef":
		if err := parsePrefabRefScope(dec, prefabID, storage); err != nil {
			return err
		}
	default:
		return &Error{Kind: UnknownVariant, Field: tag}
	}

	if dec.More() {
		extraTok, _ := dec.Token()
		return &Error{Kind: UnknownField, Field: fmt.Sprintf("%v", extraTok)}
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return payloadErr("variant", err)
	}
	return nil
}

// parseEntityScope parses an Entity object: {id, components}.
func parseEntityScope(dec *json.Decoder, prefabID ids.PrefabUUID, storage Storage) error {
	var entityID ids.EntityUUID
	return scope(dec, "id", "components",
		func(dec *json.Decoder) error { return decodeEntityUUID(dec, &entityID) },
		func(dec *json.Decoder) error {
			return array(dec, func(dec *json.Decoder) error {
				return parseComponentScope(dec, prefabID, entityID, storage)
			})
		})
}

// parseComponentScope parses a Component object: {type, data}, routing
// data to Storage.DeserializeComponent with the live decoder.
func parseComponentScope(dec *json.Decoder, prefabID ids.PrefabUUID, entityID ids.EntityUUID, storage Storage) error {
	var componentType ids.ComponentTypeUUID
	return scope(dec, "type", "data",
		func(dec *json.Decoder) error { return decodeComponentTypeUUID(dec, &componentType) },
		func(dec *json.Decoder) error {
			return wrapStorageErr(storage.DeserializeComponent(prefabID, entityID, componentType, dec), "data")
		})
}

// parsePrefabRefScope parses a PrefabRef object: {prefab_id, entity_overrides}.
func parsePrefabRefScope(dec *json.Decoder, parentPrefab ids.PrefabUUID, storage Storage) error {
	var refPrefab ids.PrefabUUID
	return scope(dec, "prefab_id", "entity_overrides",
		func(dec *json.Decoder) error { return decodePrefabUUID(dec, &refPrefab) },
		func(dec *json.Decoder) error {
			if err := storage.AddPrefabRef(parentPrefab, refPrefab); err != nil {
				return wrapStorageErr(err, "entity_overrides")
			}
			return array(dec, func(dec *json.Decoder) error {
				return parseEntityOverrideScope(dec, parentPrefab, refPrefab, storage)
			})
		})
}

// parseEntityOverrideScope parses an EntityOverride object:
// {entity_id, component_overrides}.
func parseEntityOverrideScope(dec *json.Decoder, parentPrefab, refPrefab ids.PrefabUUID, storage Storage) error {
	var entityID ids.EntityUUID
	return scope(dec, "entity_id", "component_overrides",
		func(dec *json.Decoder) error { return decodeEntityUUID(dec, &entityID) },
		func(dec *json.Decoder) error {
			return array(dec, func(dec *json.Decoder) error {
				return parseComponentOverrideScope(dec, parentPrefab, refPrefab, entityID, storage)
			})
		})
}

// parseComponentOverrideScope parses a ComponentOverride object:
// {component_type, diff}, routing diff to Storage.ApplyComponentDiff with
// the live decoder.
func parseComponentOverrideScope(dec *json.Decoder, parentPrefab, refPrefab ids.PrefabUUID, entityID ids.EntityUUID, storage Storage) error {
	var componentType ids.ComponentTypeUUID
	return scope(dec, "component_type", "diff",
		func(dec *json.Decoder) error { return decodeComponentTypeUUID(dec, &componentType) },
		func(dec *json.Decoder) error {
			return wrapStorageErr(storage.ApplyComponentDiff(parentPrefab, refPrefab, entityID, componentType, dec), "diff")
		})
}
