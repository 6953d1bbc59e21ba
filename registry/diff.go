package registry

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// DiffOutcome classifies the result of comparing a component across two
// entities, one per side of a presence matrix: does the source entity
// carry the component, does the destination.
type DiffOutcome int

const (
	// NoChange: both sides agree (both absent, or both present and equal).
	NoChange DiffOutcome = iota
	// Change: both sides present, values differ.
	Change
	// Add: absent on the source, present on the destination.
	Add
	// Remove: present on the source, absent on the destination.
	Remove
)

func (o DiffOutcome) String() string {
	switch o {
	case NoChange:
		return "no_change"
	case Change:
		return "change"
	case Add:
		return "add"
	case Remove:
		return "remove"
	default:
		return "unknown"
	}
}

// diffStruct compares two struct values field by field and returns a map of
// JSON-field-name to the destination's marshaled value, for every field that
// differs. Unexported fields are skipped, matching encoding/json's own
// visibility rules.
func diffStruct(src, dst any) (map[string]json.RawMessage, error) {
	sv := reflect.ValueOf(src)
	dv := reflect.ValueOf(dst)
	t := sv.Type()
	out := map[string]json.RawMessage{}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := fieldJSONName(f)
		sf := sv.Field(i).Interface()
		df := dv.Field(i).Interface()
		if reflect.DeepEqual(sf, df) {
			continue
		}
		b, err := json.Marshal(df)
		if err != nil {
			return nil, fmt.Errorf("registry: marshal field %q: %w", name, err)
		}
		out[name] = b
	}
	return out, nil
}

// applyStructDiff applies a field-name-keyed diff produced by diffStruct
// back onto ptr, which must be a pointer to the same struct type diffStruct
// was called with.
func applyStructDiff(ptr any, diff map[string]json.RawMessage) error {
	pv := reflect.ValueOf(ptr).Elem()
	t := pv.Type()

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		raw, ok := diff[fieldJSONName(f)]
		if !ok {
			continue
		}
		fv := pv.Field(i)
		newVal := reflect.New(fv.Type())
		if err := json.Unmarshal(raw, newVal.Interface()); err != nil {
			return fmt.Errorf("registry: apply diff field %q: %w", f.Name, err)
		}
		fv.Set(newVal.Elem())
	}
	return nil
}

func fieldJSONName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
