// Package pattern classifies raw pattern values into descriptors.
//
// A descriptor is a closed tagged variant: Wildcard, Value, Predicate or
// Structural. Only the types in this package implement Descriptor.
//
// Classification is total and happens once per branch. The tag chosen for a
// raw pattern is never revisited; structural templates are kept as supplied
// and their elements are classified lazily while matching.
//
// Structs are records: a struct with exported fields is a template over
// those fields, matched by name like a mapping. Unexported fields are not
// part of the template.
//
// Go has no "omitted argument", so the wildcard is spelled explicitly with
// Any. An untyped nil is an ordinary value and matches only nil subjects.
package pattern
