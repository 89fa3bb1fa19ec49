package ir

// Version constants for the table format and engine.
const (
	// FormatVersion is the decision table format version.
	FormatVersion = "1"

	// EngineVersion is the pmatch engine version.
	EngineVersion = "0.1.0"
)
