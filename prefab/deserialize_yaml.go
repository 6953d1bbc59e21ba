package prefab

import (
	"fmt"
	"io"

	"github.com/edwinsyarief/prefabecs/ids"
	"gopkg.in/yaml.v3"
)

// DeserializeYAML parses a structured prefab document from r, encoded as
// YAML rather than JSON, and drives storage with the same entities,
// components, prefab-references, and overrides Deserialize would, in
// document order. yaml.v3 decodes a mapping's keys into *yaml.Node.Content
// in document order, so field-order and duplicate-key enforcement carries
// over unchanged; only the cursor underneath scope/array is different.
func DeserializeYAML(r io.Reader, storage Storage) error {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return payloadErr("", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) != 1 {
			return &Error{Kind: PayloadParse, Cause: fmt.Errorf("expected a single document root")}
		}
		root = root.Content[0]
	}
	return parsePrefabScopeYAML(root, storage)
}

// scopeYAML walks one YAML mapping's fields, enforcing that identKey
// appears before dataKey, that neither repeats, and that no other key
// appears. handleIdent and handleData each receive the value node for
// their key.
func scopeYAML(node *yaml.Node, identKey, dataKey string, handleIdent, handleData func(*yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return &Error{Kind: PayloadParse, Field: identKey, Cause: fmt.Errorf("expected a mapping, got kind %d", node.Kind)}
	}

	identSeen := false
	dataSeen := false

	for i := 0; i < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]
		key := keyNode.Value

		switch key {
		case identKey:
			if identSeen {
				return &Error{Kind: DuplicateField, Field: identKey}
			}
			if err := handleIdent(valNode); err != nil {
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
			if err := handleData(valNode); err != nil {
				return err
			}
			dataSeen = true

		default:
			return &Error{Kind: UnknownField, Field: key}
		}
	}

	if !identSeen {
		return &Error{Kind: MissingField, Field: identKey}
	}
	if !dataSeen {
		return &Error{Kind: MissingField, Field: dataKey}
	}
	return nil
}

// arrayYAML walks a YAML sequence, calling element for every entry.
func arrayYAML(node *yaml.Node, element func(*yaml.Node) error) error {
	if node.Kind != yaml.SequenceNode {
		return &Error{Kind: PayloadParse, Cause: fmt.Errorf("expected a sequence, got kind %d", node.Kind)}
	}
	for _, child := range node.Content {
		if err := element(child); err != nil {
			return err
		}
	}
	return nil
}

func decodePrefabUUIDYAML(node *yaml.Node, out *ids.PrefabUUID) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return payloadErr("id", err)
	}
	u, err := ids.ParsePrefabUUID(s)
	if err != nil {
		return payloadErr("id", err)
	}
	*out = u
	return nil
}

func decodeEntityUUIDYAML(node *yaml.Node, out *ids.EntityUUID) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return payloadErr("id", err)
	}
	u, err := ids.ParseEntityUUID(s)
	if err != nil {
		return payloadErr("id", err)
	}
	*out = u
	return nil
}

func decodeComponentTypeUUIDYAML(node *yaml.Node, out *ids.ComponentTypeUUID) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return payloadErr("type", err)
	}
	u, err := ids.ParseComponentTypeUUID(s)
	if err != nil {
		return payloadErr("type", err)
	}
	*out = u
	return nil
}

// parsePrefabScopeYAML parses the Prefab scope: {id, objects}.
func parsePrefabScopeYAML(node *yaml.Node, storage Storage) error {
	var prefabID ids.PrefabUUID
	return scopeYAML(node, "id", "objects",
		func(n *yaml.Node) error { return decodePrefabUUIDYAML(n, &prefabID) },
		func(n *yaml.Node) error {
			return arrayYAML(n, func(n *yaml.Node) error {
				return parseObjectScopeYAML(n, prefabID, storage)
			})
		})
}

// parseObjectScopeYAML parses one PrefabObject: an externally tagged,
// single-key mapping whose key names the variant ("Entity" or
// "PrefabRef") and whose value is that variant's own scope.
func parseObjectScopeYAML(node *yaml.Node, prefabID ids.PrefabUUID, storage Storage) error {
	if node.Kind != yaml.MappingNode {
		return &Error{Kind: PayloadParse, Field: "variant", Cause: fmt.Errorf("expected a mapping, got kind %d", node.Kind)}
	}
	if len(node.Content) == 0 {
		return &Error{Kind: MissingField, Field: "variant"}
	}
	if len(node.Content) > 2 {
		return &Error{Kind: UnknownField, Field: node.Content[2].Value}
	}

	tag := node.Content[0].Value
	valNode := node.Content[1]

	switch tag {
	case "Entity":
		return parseEntityScopeYAML(valNode, prefabID, storage)
	case "PrefabRef":
		return parsePrefabRefScopeYAML(valNode, prefabID, storage)
	default:
		return &Error{Kind: UnknownVariant, Field: tag}
	}
}

// parseEntityScopeYAML parses an Entity object: {id, components}.
func parseEntityScopeYAML(node *yaml.Node, prefabID ids.PrefabUUID, storage Storage) error {
	var entityID ids.EntityUUID
	return scopeYAML(node, "id", "components",
		func(n *yaml.Node) error { return decodeEntityUUIDYAML(n, &entityID) },
		func(n *yaml.Node) error {
			return arrayYAML(n, func(n *yaml.Node) error {
				return parseComponentScopeYAML(n, prefabID, entityID, storage)
			})
		})
}

// parseComponentScopeYAML parses a Component object: {type, data}, routing
// data to Storage.DeserializeComponent with the live value node.
func parseComponentScopeYAML(node *yaml.Node, prefabID ids.PrefabUUID, entityID ids.EntityUUID, storage Storage) error {
	var componentType ids.ComponentTypeUUID
	return scopeYAML(node, "type", "data",
		func(n *yaml.Node) error { return decodeComponentTypeUUIDYAML(n, &componentType) },
		func(n *yaml.Node) error {
			return wrapStorageErr(storage.DeserializeComponent(prefabID, entityID, componentType, n), "data")
		})
}

// parsePrefabRefScopeYAML parses a PrefabRef object: {prefab_id, entity_overrides}.
func parsePrefabRefScopeYAML(node *yaml.Node, parentPrefab ids.PrefabUUID, storage Storage) error {
	var refPrefab ids.PrefabUUID
	return scopeYAML(node, "prefab_id", "entity_overrides",
		func(n *yaml.Node) error { return decodePrefabUUIDYAML(n, &refPrefab) },
		func(n *yaml.Node) error {
			if err := storage.AddPrefabRef(parentPrefab, refPrefab); err != nil {
				return wrapStorageErr(err, "entity_overrides")
			}
			return arrayYAML(n, func(n *yaml.Node) error {
				return parseEntityOverrideScopeYAML(n, parentPrefab, refPrefab, storage)
			})
		})
}

// parseEntityOverrideScopeYAML parses an EntityOverride object:
// {entity_id, component_overrides}.
func parseEntityOverrideScopeYAML(node *yaml.Node, parentPrefab, refPrefab ids.PrefabUUID, storage Storage) error {
	var entityID ids.EntityUUID
	return scopeYAML(node, "entity_id", "component_overrides",
		func(n *yaml.Node) error { return decodeEntityUUIDYAML(n, &entityID) },
		func(n *yaml.Node) error {
			return arrayYAML(n, func(n *yaml.Node) error {
				return parseComponentOverrideScopeYAML(n, parentPrefab, refPrefab, entityID, storage)
			})
		})
}

// parseComponentOverrideScopeYAML parses a ComponentOverride object:
// {component_type, diff}, routing diff to Storage.ApplyComponentDiff with
// the live value node.
func parseComponentOverrideScopeYAML(node *yaml.Node, parentPrefab, refPrefab ids.PrefabUUID, entityID ids.EntityUUID, storage Storage) error {
	var componentType ids.ComponentTypeUUID
	return scopeYAML(node, "component_type", "diff",
		func(n *yaml.Node) error { return decodeComponentTypeUUIDYAML(n, &componentType) },
		func(n *yaml.Node) error {
			return wrapStorageErr(storage.ApplyComponentDiff(parentPrefab, refPrefab, entityID, componentType, n), "diff")
		})
}
