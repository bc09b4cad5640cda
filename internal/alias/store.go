// Package alias stores named command templates for the shell.
//
// An alias has one or more names ("vmlist,vl"), a description and a command
// template with {placeholder} arguments. User aliases and the predefined
// system aliases share one store, persisted as a flat file in the data dir.
package alias

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/quocvuong92/pve-cli/internal/logging"
)

// Errors
var (
	ErrInvalidName   = errors.New("invalid alias name, allowed characters are a-z A-Z 0-9 , _ -")
	ErrDuplicateName = errors.New("alias name already exists")
	ErrNotFound      = errors.New("alias not found")
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9,_-]*$`)

// Definition is one alias
type Definition struct {
	Name        string `yaml:"name"` // comma separated names, as typed
	Description string `yaml:"description"`
	Command     string `yaml:"command"`
	System      bool   `yaml:"-"`
}

// Names returns the individual names, the first one is the primary name
func (d Definition) Names() []string {
	var names []string
	for _, n := range strings.Split(d.Name, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Has reports whether name is exactly one of the alias names
func (d Definition) Has(name string) bool {
	for _, n := range d.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Placeholders returns the template arguments in order
func (d Definition) Placeholders() []string {
	return ExtractPlaceholders(d.Command)
}

// Store is the ordered alias collection backed by a file
type Store struct {
	path string
	defs []Definition
}

// NewStore creates an empty store persisted at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Load replaces the content with the backing file. A missing file is an
// empty store; so is a corrupt one, with a warning.
func (s *Store) Load() error {
	s.defs = nil

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read aliases: %w", err)
	}

	defs, err := decode(data)
	if err != nil {
		logging.Warn("ignoring corrupt alias file", logging.Fields{"path": s.path, "error": err.Error()})
		return nil
	}
	s.defs = defs
	return nil
}

// Save writes the store through a temp file renamed over the target
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".alias-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save aliases: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(encode(s.defs)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to save aliases: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save aliases: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to save aliases: %w", err)
	}
	return nil
}

// Check validates names for Create without adding anything
func (s *Store) Check(names string) error {
	if !validName.MatchString(names) {
		return fmt.Errorf("%w: %q", ErrInvalidName, names)
	}

	parts := strings.Split(names, ",")
	seen := make(map[string]bool, len(parts))
	for _, n := range parts {
		if n == "" {
			return fmt.Errorf("%w: empty name in %q", ErrInvalidName, names)
		}
		if seen[n] || s.Exists(n) {
			return fmt.Errorf("%w: %s", ErrDuplicateName, n)
		}
		seen[n] = true
	}
	return nil
}

// Create adds an alias. names is comma separated; every name must be new.
func (s *Store) Create(names, description, command string, system bool) error {
	if err := s.Check(names); err != nil {
		return err
	}

	s.defs = append(s.defs, Definition{
		Name:        names,
		Description: description,
		Command:     command,
		System:      system,
	})
	return nil
}

// Remove deletes the alias owning name, with all of its names
func (s *Store) Remove(name string) (Definition, error) {
	for i, d := range s.defs {
		if d.Has(name) {
			s.defs = append(s.defs[:i], s.defs[i+1:]...)
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Exists reports whether some alias has exactly this name
func (s *Store) Exists(name string) bool {
	_, ok := s.Find(name)
	return ok
}

// Find returns the alias owning name
func (s *Store) Find(name string) (Definition, bool) {
	for _, d := range s.defs {
		if d.Has(name) {
			return d, true
		}
	}
	return Definition{}, false
}

// All returns a copy of the aliases in insertion order
func (s *Store) All() []Definition {
	return append([]Definition(nil), s.defs...)
}

// Len returns the number of aliases
func (s *Store) Len() int {
	return len(s.defs)
}

// Seed adds predefined aliases whose names are all unused and returns how
// many were added.
func (s *Store) Seed(defs []Definition) int {
	added := 0
	for _, d := range defs {
		if err := s.Create(d.Name, d.Description, d.Command, true); err != nil {
			logging.Debug("system alias skipped", logging.Fields{"alias": d.Name, "reason": err.Error()})
			continue
		}
		added++
	}
	return added
}

// File format: one alias per line, tab separated
//
//	names <TAB> system <TAB> "description" <TAB> "command"
//
// Description and command are Go-quoted so tabs and newlines survive.

func encode(defs []Definition) []byte {
	var buf bytes.Buffer
	for _, d := range defs {
		buf.WriteString(d.Name)
		buf.WriteByte('\t')
		buf.WriteString(strconv.FormatBool(d.System))
		buf.WriteByte('\t')
		buf.WriteString(strconv.Quote(d.Description))
		buf.WriteByte('\t')
		buf.WriteString(strconv.Quote(d.Command))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func decode(data []byte) ([]Definition, error) {
	var defs []Definition
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 fields, got %d", lineNo, len(fields))
		}
		if fields[0] == "" || !validName.MatchString(fields[0]) {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrInvalidName)
		}
		system, err := strconv.ParseBool(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		description, err := strconv.Unquote(fields[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: description: %w", lineNo, err)
		}
		command, err := strconv.Unquote(fields[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: command: %w", lineNo, err)
		}

		defs = append(defs, Definition{
			Name:        fields[0],
			Description: description,
			Command:     command,
			System:      system,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return defs, nil
}
