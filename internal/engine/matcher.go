package engine

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/pmatch/internal/pattern"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Matches reports whether a descriptor matches a value.
//
// The match is determined by the descriptor tag:
//   - Wildcard: always true
//   - Value: identical dynamic type and == equality (NaN never matches)
//   - Predicate: the func returns exactly the bool true
//   - Structural: recursive partial match of a sequence, mapping or record
//     template
//
// A non-nil error is only ever a predicate failure. It aborts the match
// immediately, including any remaining elements of an enclosing template.
func Matches(d pattern.Descriptor, v any) (bool, error) {
	switch p := d.(type) {
	case pattern.Wildcard:
		return true, nil
	case pattern.Value:
		return valuesEqual(p.X, v), nil
	case pattern.Predicate:
		return callPredicate(p.Fn, v)
	case pattern.Structural:
		return matchStructural(p, v)
	default:
		return false, nil
	}
}

// valuesEqual compares two scalars with no type coercion.
func valuesEqual(x, v any) bool {
	if x == nil || v == nil {
		return x == nil && v == nil
	}
	if reflect.TypeOf(x) != reflect.TypeOf(v) {
		return false
	}
	// Comparable checks dynamic contents too, so == below cannot panic.
	if !reflect.ValueOf(x).Comparable() || !reflect.ValueOf(v).Comparable() {
		return false
	}
	return x == v
}

// callPredicate invokes a predicate func with the subject.
//
// func(any) bool and func(any) (bool, error) are called directly. Other
// single-argument funcs are called through reflection when the subject is
// assignable to the parameter; anything else does not match.
func callPredicate(fn any, v any) (bool, error) {
	switch f := fn.(type) {
	case func(any) bool:
		return f(v), nil
	case func(any) (bool, error):
		ok, err := f(v)
		if err != nil {
			return false, err
		}
		return ok, nil
	}

	rv := reflect.ValueOf(fn)
	ft := rv.Type()
	if ft.NumIn() != 1 || ft.IsVariadic() {
		return false, nil
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if !ft.Out(1).Implements(errorType) {
			return false, nil
		}
	default:
		return false, nil
	}

	arg, ok := argumentFor(ft.In(0), v)
	if !ok {
		return false, nil
	}

	out := rv.Call([]reflect.Value{arg})
	if len(out) == 2 {
		if err := resultError(out[1]); err != nil {
			return false, err
		}
	}
	return isTrue(out[0]), nil
}

// resultError returns the error held by a predicate's second result, or nil.
// Error types that are not nilable, such as struct errors, always count as
// an error.
func resultError(out reflect.Value) error {
	switch out.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if out.IsNil() {
			return nil
		}
	}
	err, _ := out.Interface().(error)
	return err
}

// argumentFor converts a subject into a call argument of type in.
func argumentFor(in reflect.Type, v any) (reflect.Value, bool) {
	if v == nil {
		switch in.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(in), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(in) {
		return reflect.Value{}, false
	}
	return rv, true
}

// isTrue reports whether a predicate result is exactly the bool true.
// Named bool types and truthy non-bools do not count.
func isTrue(out reflect.Value) bool {
	if out.Kind() == reflect.Interface {
		if out.IsNil() {
			return false
		}
		out = out.Elem()
	}
	b, ok := out.Interface().(bool)
	return ok && b
}

func matchStructural(s pattern.Structural, v any) (bool, error) {
	tv := indirect(reflect.ValueOf(s.Template))
	sv := indirect(reflect.ValueOf(v))

	switch tv.Kind() {
	case reflect.Slice, reflect.Array:
		return matchSequence(tv, sv)
	case reflect.Map:
		return matchMapping(tv, sv)
	case reflect.Struct:
		return matchRecord(tv, sv)
	default:
		return false, nil
	}
}

// matchSequence checks a prefix match: the subject must be at least as long
// as the template, extra trailing elements are ignored.
func matchSequence(tv, sv reflect.Value) (bool, error) {
	if !sv.IsValid() || (sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array) {
		return false, nil
	}
	if sv.Len() < tv.Len() {
		return false, nil
	}

	for i := 0; i < tv.Len(); i++ {
		ok, err := Matches(pattern.Classify(interfaceOf(tv.Index(i))), interfaceOf(sv.Index(i)))
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// matchMapping checks that every template key exists in the subject and
// matches. Extra subject keys are ignored.
func matchMapping(tv, sv reflect.Value) (bool, error) {
	if !sv.IsValid() || (sv.Kind() != reflect.Map && sv.Kind() != reflect.Struct) {
		return false, nil
	}

	for _, key := range sortedKeys(tv) {
		sub, found := lookup(sv, key)
		if !found {
			return false, nil
		}
		ok, err := Matches(pattern.Classify(interfaceOf(tv.MapIndex(key))), sub)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// matchRecord checks every exported field of a struct template against the
// subject member of the same name, like a mapping template keyed by field
// name. A map subject may also be keyed by the field's json tag.
func matchRecord(tv, sv reflect.Value) (bool, error) {
	if !sv.IsValid() || (sv.Kind() != reflect.Map && sv.Kind() != reflect.Struct) {
		return false, nil
	}

	for _, f := range recordFields(tv.Type()) {
		sub, found := lookup(sv, reflect.ValueOf(f.Name))
		if !found {
			if tag := jsonName(f); tag != "" && sv.Kind() == reflect.Map {
				sub, found = lookup(sv, reflect.ValueOf(tag))
			}
		}
		if !found {
			return false, nil
		}
		ok, err := Matches(pattern.Classify(interfaceOf(tv.FieldByIndex(f.Index))), sub)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// recordFields returns the exported fields of a struct type sorted by name.
func recordFields(t reflect.Type) []reflect.StructField {
	var fields []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() {
			fields = append(fields, f)
		}
	}
	slices.SortFunc(fields, func(a, b reflect.StructField) int {
		return strings.Compare(a.Name, b.Name)
	})
	return fields
}

func jsonName(f reflect.StructField) string {
	tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if tag == "-" {
		return ""
	}
	return tag
}

// lookup fetches the subject member addressed by a template key.
// Map subjects are indexed by key; struct subjects by exported field name
// or json tag name.
func lookup(sv reflect.Value, key reflect.Value) (any, bool) {
	if key.Kind() == reflect.Interface {
		key = key.Elem()
	}
	if !key.IsValid() {
		return nil, false
	}

	if sv.Kind() == reflect.Map {
		if !key.Type().AssignableTo(sv.Type().Key()) {
			return nil, false
		}
		mv := sv.MapIndex(key)
		if !mv.IsValid() {
			return nil, false
		}
		return interfaceOf(mv), true
	}

	if key.Kind() != reflect.String {
		return nil, false
	}
	return structField(sv, key.String())
}

func structField(sv reflect.Value, name string) (any, bool) {
	st := sv.Type()
	if f, ok := st.FieldByName(name); ok && f.IsExported() {
		fv, err := sv.FieldByIndexErr(f.Index)
		if err != nil {
			return nil, false
		}
		return interfaceOf(fv), true
	}

	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag := jsonName(f); tag != "" && tag == name {
			return interfaceOf(sv.Field(i)), true
		}
	}
	return nil, false
}

// sortedKeys returns map keys ordered by their formatted representation so
// predicate side effects happen in a reproducible order.
func sortedKeys(m reflect.Value) []reflect.Value {
	type entry struct {
		key  reflect.Value
		name string
	}

	keys := m.MapKeys()
	entries := make([]entry, len(keys))
	for i, k := range keys {
		entries[i] = entry{key: k, name: fmt.Sprint(interfaceOf(k))}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return strings.Compare(a.name, b.name)
	})

	out := make([]reflect.Value, len(entries))
	for i, e := range entries {
		out[i] = e.key
	}
	return out
}

// indirect unwraps interfaces and pointers. A nil along the way yields the
// zero reflect.Value.
func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// interfaceOf returns the value held by rv, or nil when rv is invalid or
// holds a nil interface.
func interfaceOf(rv reflect.Value) any {
	if !rv.IsValid() || !rv.CanInterface() {
		return nil
	}
	if rv.Kind() == reflect.Interface && rv.IsNil() {
		return nil
	}
	return rv.Interface()
}
