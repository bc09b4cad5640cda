// Package history keeps the lines typed in the interactive shell.
package history

// Recorder defines the history operations the shell depends on.
// This interface enables dependency injection and easier testing.
type Recorder interface {
	// Load reads the history from disk
	Load() error

	// Save writes the history to disk
	Save() error

	// Add records a typed line
	Add(line string)

	// GetAll returns the recorded lines, oldest first
	GetAll() []string

	// Clear removes all history, in memory and on disk
	Clear() error

	// SetEnabled turns recording on or off
	SetEnabled(enabled bool)

	// Enabled reports whether lines are recorded
	Enabled() bool
}

// Ensure concrete type implements the interface
var _ Recorder = (*Store)(nil)
