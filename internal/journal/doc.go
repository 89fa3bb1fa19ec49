// Package journal records decision table evaluations in the store and
// replays recorded sessions against a compiled table.
//
// Each Recorder owns one session id. Evaluations are stamped with a
// logical clock (seq), never wall time, so a journal replays in the exact
// order it was written.
package journal
