// Package ir provides the canonical data form shared by decision tables,
// scenarios and the evaluation journal.
//
// Canonical data is built from int64, float64, string, bool, nil, []any and
// map[string]any only. Data decoded from YAML, JSON or CUE is normalized into
// this form so that data-defined patterns compare against data-defined
// subjects under the matcher's strict type equality.
//
// This package imports nothing internal.
//
// Key design constraints:
//   - Integers are always int64; non-integral numbers are float64
//   - NaN and infinities are rejected
//   - Canonical JSON follows RFC 8785 (UTF-16 key order, no HTML escaping)
//   - Hashes are SHA-256 with a versioned domain prefix
package ir
