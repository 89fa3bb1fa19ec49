// Package pmatch provides structural pattern matching for Go values.
//
// A match session is built from a subject and an ordered list of branches.
// Each branch pairs a pattern with an outcome; the first branch whose pattern
// matches the subject wins and only its outcome is resolved:
//
//	res, err := pmatch.Match[string](code).
//		When(200).To("ok").
//		When(func(c int) bool { return c >= 500 }).To("server error").
//		Otherwise("other")
//
// # Patterns
//
// A raw pattern is classified once, when the branch is registered:
//   - [Any] matches every subject.
//   - A func value is a predicate. It is called with the subject and the
//     branch matches only if it returns exactly true. Supported shapes are
//     func(T) bool and func(T) (bool, error); the subject must be assignable
//     to T.
//   - A map, slice or array is a structural template. Sequences match by
//     prefix and mappings match partially, recursively; extra subject data is
//     ignored. Mapping templates also match exported struct fields by name or
//     json tag.
//   - A struct with exported fields (or a pointer to one) is a record
//     template: each exported field is matched like a mapping key, against
//     a struct or map subject. Unexported fields are ignored.
//   - Anything else, including nil, is compared for equality. The dynamic
//     types must be identical, so 5 (int) does not match int64(5).
//
// # Outcomes
//
// To registers a literal, returned as-is even when it is a func. Map
// registers a transform that receives the subject, called only if its branch
// wins.
//
// # Engines
//
// Sessions started with [Match] use a ready in-process engine. [New] creates
// an explicit handle; with [WithLoader] the handle must be initialized with
// [Engine.Init] before any terminal call, otherwise the call fails with
// [ErrUninitialized].
//
// A Session is single-use and must not be shared between goroutines. An
// Engine is safe for concurrent use.
package pmatch
