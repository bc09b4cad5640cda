package display

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Spinner shows progress on stderr while the shell waits on the server.
// A nil *Spinner is valid and does nothing.
type Spinner struct {
	s *spinner.Spinner
}

// Quiet suppresses spinners, set by only-result mode
var Quiet bool

// NewSpinner returns a spinner with the given suffix text. It returns nil
// when Quiet is set or stderr is not a terminal.
func NewSpinner(msg string) *Spinner {
	if Quiet || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	return &Spinner{s: s}
}

// Start starts the animation
func (sp *Spinner) Start() {
	if sp == nil {
		return
	}
	sp.s.Start()
}

// Stop stops the animation and clears the line
func (sp *Spinner) Stop() {
	if sp == nil {
		return
	}
	sp.s.Stop()
}

// Suffix replaces the text shown after the animation
func (sp *Spinner) Suffix(msg string) {
	if sp == nil {
		return
	}
	sp.s.Lock()
	sp.s.Suffix = " " + msg
	sp.s.Unlock()
}
