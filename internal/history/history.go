package history

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quocvuong92/pve-cli/internal/constants"
)

// Store is the line history backed by a plain text file, one line each
type Store struct {
	path    string
	limit   int
	lines   []string
	enabled bool
}

// NewStore creates an enabled store persisted at path
func NewStore(path string) *Store {
	return &Store{path: path, limit: constants.HistoryLimit, enabled: true}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Load replaces the lines with the file content, creating an empty file
// when there is none.
func (s *Store) Load() error {
	s.lines = nil

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		if err := os.WriteFile(s.path, nil, 0600); err != nil {
			return fmt.Errorf("failed to create history file: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		s.lines = append(s.lines, scanner.Text())
	}
	return scanner.Err()
}

// Add records line unless recording is off. Blank lines are kept in
// memory until the next Save.
func (s *Store) Add(line string) {
	if !s.enabled {
		return
	}
	s.lines = append(s.lines, line)
}

// GetAll returns a copy of the lines
func (s *Store) GetAll() []string {
	return append([]string(nil), s.lines...)
}

// Len returns the number of lines
func (s *Store) Len() int {
	return len(s.lines)
}

// Clear empties the history and deletes the file
func (s *Store) Clear() error {
	s.lines = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

// Save drops blank lines, keeps the most recent ones up to the limit and
// writes the file.
func (s *Store) Save() error {
	kept := make([]string, 0, len(s.lines))
	for _, l := range s.lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) > s.limit {
		kept = kept[len(kept)-s.limit:]
	}
	s.lines = kept

	var buf bytes.Buffer
	for _, l := range kept {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// SetEnabled turns recording on or off, the recorded lines are kept
func (s *Store) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// Enabled reports whether lines are recorded
func (s *Store) Enabled() bool {
	return s.enabled
}
