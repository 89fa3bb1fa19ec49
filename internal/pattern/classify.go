package pattern

import "reflect"

// Classify normalizes a raw pattern into a Descriptor.
//
// Rules, in precedence order:
//  1. A Descriptor (including Any) is returned unchanged.
//  2. A non-nil func becomes a Predicate.
//  3. A map, slice or array becomes a Structural template, kept as-is.
//  4. A record (a struct with exported fields, or a non-nil pointer to one)
//     becomes a Structural template over its exported fields.
//  5. Anything else, untyped nil included, becomes a Value.
func Classify(raw any) Descriptor {
	if d, ok := raw.(Descriptor); ok {
		return d
	}
	if raw == nil {
		return Value{X: nil}
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Func:
		if rv.IsNil() {
			return Value{X: raw}
		}
		return Predicate{Fn: raw}
	case reflect.Map, reflect.Slice, reflect.Array:
		return Structural{Template: raw}
	case reflect.Struct:
		if IsRecord(rv.Type()) {
			return Structural{Template: raw}
		}
	case reflect.Pointer:
		if !rv.IsNil() && IsRecord(rv.Type().Elem()) {
			return Structural{Template: raw}
		}
	}
	return Value{X: raw}
}

// IsRecord reports whether t is a struct type with at least one exported
// field. Structs with only unexported fields, such as time.Time, compare as
// values.
func IsRecord(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

// ClassifyAll classifies each raw pattern in order.
func ClassifyAll(raws []any) []Descriptor {
	out := make([]Descriptor, len(raws))
	for i, raw := range raws {
		out[i] = Classify(raw)
	}
	return out
}
