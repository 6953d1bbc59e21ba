package prefab

import "fmt"

// ErrorKind classifies a structured-prefab parse failure.
type ErrorKind int

const (
	// MissingField: a scope's required identifier or data key never appeared.
	MissingField ErrorKind = iota
	// DuplicateField: an identifier or data key appeared twice in the same scope.
	DuplicateField
	// FieldOrder: the data key appeared before its scope's identifier key.
	FieldOrder
	// UnknownVariant: an object-enum tag wasn't "Entity" or "PrefabRef".
	UnknownVariant
	// UnknownComponentType: the storage sink couldn't resolve a component UUID.
	UnknownComponentType
	// PayloadParse: a leaf component/diff payload, or the envelope itself,
	// failed to decode.
	PayloadParse
	// StorageRejected: a Storage callback returned an error of its own.
	StorageRejected
	// UnknownField: a scope contained a key that is neither its identifier
	// nor its data field. Not named in the original error taxonomy, which
	// only covers missing/duplicate/misordered identifier and data fields;
	// added because the document format separately requires unknown keys
	// to be rejected, and callers still need a way to distinguish this
	// from a malformed document (PayloadParse) or an unrecognized enum
	// tag (UnknownVariant).
	UnknownField
)

func (k ErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing_field"
	case DuplicateField:
		return "duplicate_field"
	case FieldOrder:
		return "field_order"
	case UnknownVariant:
		return "unknown_variant"
	case UnknownComponentType:
		return "unknown_component_type"
	case PayloadParse:
		return "payload_parse"
	case StorageRejected:
		return "storage_rejected"
	case UnknownField:
		return "unknown_field"
	default:
		return "unknown"
	}
}

// Error is the error type every structured-prefab parse failure is
// reported as. Field names the identifier/data key (or component UUID)
// involved, where applicable.
type Error struct {
	Kind  ErrorKind
	Field string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("prefab: %s %q: %v", e.Kind, e.Field, e.Cause)
	}
	return fmt.Sprintf("prefab: %s %q", e.Kind, e.Field)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
