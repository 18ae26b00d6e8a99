package ir

// Version constants for the reasoner and its persisted formats.
const (
	// JournalVersion is the schema version of persisted run journals.
	JournalVersion = "1"

	// EngineVersion is the reasoner version.
	EngineVersion = "0.1.0"
)
