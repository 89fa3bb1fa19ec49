// Package engine implements structural pattern evaluation and dispatch.
//
// The engine is the part of pmatch that decides which branch wins. It receives
// a subject and an ordered list of classified patterns and returns the index of
// the first pattern that matches.
//
// ARCHITECTURE:
//
// Evaluation:
// Evaluate scans patterns in registration order and stops at the first match.
// Later branches are never inspected once a branch wins, so shadowed branches
// are silent. Predicate errors abort the scan immediately.
//
// Resolution:
// Outcomes are resolved only for the winning branch. A Literal is returned as
// stored, even when it holds a func. A Transform is called with the subject.
//
// Backends:
// Evaluate is also exposed through the Backend interface so a caller can put
// another evaluator behind the same contract. Native is the in-process
// implementation. Setup guards a lazily loaded backend: one load at a time,
// failures may be retried, terminal calls before success are rejected.
//
// CRITICAL PATTERNS:
//
// First match wins:
// Registration order is the only tie-break. No scoring, no reordering.
//
// Laziness:
// Non-winning outcomes never execute, including their side effects.
//
// No logging, no retries:
// Every failure is returned to the caller of the terminal operation.
package engine
