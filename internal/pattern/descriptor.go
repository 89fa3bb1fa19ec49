package pattern

import (
	"fmt"
	"reflect"
)

// Kind names the tag of a Descriptor.
type Kind string

const (
	KindWildcard   Kind = "wildcard"
	KindValue      Kind = "value"
	KindPredicate  Kind = "predicate"
	KindStructural Kind = "structural"
)

// Descriptor is a sealed interface representing a classified pattern.
// Only Wildcard, Value, Predicate and Structural implement it.
type Descriptor interface {
	Kind() Kind
	descriptor() // Sealed
}

// Wildcard matches any subject.
type Wildcard struct{}

func (Wildcard) descriptor() {}

// Kind implements Descriptor.
func (Wildcard) Kind() Kind { return KindWildcard }

// String implements fmt.Stringer.
func (Wildcard) String() string { return "_" }

// Any is the wildcard marker accepted wherever a raw pattern is expected.
var Any Descriptor = Wildcard{}

// Value matches subjects of the identical dynamic type that compare equal.
type Value struct {
	X any
}

func (Value) descriptor() {}

// Kind implements Descriptor.
func (Value) Kind() Kind { return KindValue }

// String implements fmt.Stringer.
func (v Value) String() string { return fmt.Sprintf("%#v", v.X) }

// Predicate holds a func invoked with the subject.
// Fn is kept exactly as supplied by the caller.
type Predicate struct {
	Fn any
}

func (Predicate) descriptor() {}

// Kind implements Descriptor.
func (Predicate) Kind() Kind { return KindPredicate }

// String implements fmt.Stringer.
func (p Predicate) String() string {
	return fmt.Sprintf("predicate(%s)", reflect.TypeOf(p.Fn))
}

// Structural holds a map, slice, array or record template whose elements
// are raw patterns themselves.
type Structural struct {
	Template any
}

func (Structural) descriptor() {}

// Kind implements Descriptor.
func (Structural) Kind() Kind { return KindStructural }

// String implements fmt.Stringer.
func (s Structural) String() string { return fmt.Sprintf("structural(%v)", s.Template) }

// IsSequence reports whether the template is a slice or array.
func (s Structural) IsSequence() bool {
	k := reflect.ValueOf(s.Template).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// IsMapping reports whether the template is a map.
func (s Structural) IsMapping() bool {
	return reflect.ValueOf(s.Template).Kind() == reflect.Map
}

// IsRecord reports whether the template is a struct or a pointer to one.
func (s Structural) IsRecord() bool {
	t := reflect.TypeOf(s.Template)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}
