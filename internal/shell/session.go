// Package shell is the pve-cli command interpreter. Every line is tokenized
// and run through a cobra command tree rebuilt from the session state, so
// aliases created on one line are commands on the next.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/quocvuong92/pve-cli/internal/alias"
	"github.com/quocvuong92/pve-cli/internal/constants"
	"github.com/quocvuong92/pve-cli/internal/display"
	"github.com/quocvuong92/pve-cli/internal/explorer"
	"github.com/quocvuong92/pve-cli/internal/history"
	"github.com/quocvuong92/pve-cli/internal/logging"
)

// LineReader asks the user a question and returns the answer without the
// line terminator.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

type lineReader struct {
	r *bufio.Reader
	w io.Writer
}

// NewLineReader reads answers from in, writing prompts to out
func NewLineReader(in io.Reader, out io.Writer) LineReader {
	return &lineReader{r: bufio.NewReader(in), w: out}
}

func (l *lineReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(l.w, prompt)
	line, err := l.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Session is the state shared by the lines of one shell run
type Session struct {
	Explorer *explorer.Explorer
	Aliases  *alias.Store
	History  history.Recorder
	DataDir  string

	// OnlyResult hides banners and alias traces
	OnlyResult bool

	Out   io.Writer
	Err   io.Writer
	Input LineReader // nil disables interactive alias prompts

	// ClearScreen is run by clear/cls
	ClearScreen func(w io.Writer)
}

// NewSession creates a session printing to stdout and stderr
func NewSession(exp *explorer.Explorer, aliases *alias.Store, hist history.Recorder, dataDir string) *Session {
	return &Session{
		Explorer:    exp,
		Aliases:     aliases,
		History:     hist,
		DataDir:     dataDir,
		Out:         os.Stdout,
		Err:         os.Stderr,
		ClearScreen: clearScreen,
	}
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// Dispatch runs one line. Errors are printed, never returned; the result
// reports whether the line asked the shell to exit.
func (s *Session) Dispatch(ctx context.Context, line string) bool {
	exit, err := s.execute(ctx, line, 0)
	if err != nil {
		s.showError(err)
	}
	return exit
}

func (s *Session) execute(ctx context.Context, line string, depth int) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}
	if depth > constants.MaxAliasDepth {
		return false, fmt.Errorf("%w: aliases nested deeper than %d", ErrParse, constants.MaxAliasDepth)
	}

	tokens, err := Tokenize(line)
	if err != nil {
		return false, err
	}

	logging.Debug("dispatch", logging.Fields{"line": line, "depth": depth})

	var exit bool
	root := s.newRoot(depth, &exit)
	root.SetArgs(tokens)
	err = root.ExecuteContext(ctx)
	return exit, err
}

func (s *Session) showError(err error) {
	fmt.Fprintln(s.Err, display.ErrorColor(err.Error()))
}

// RunScript dispatches every line of r until the end or an exit command.
// Aliases and history are saved once at the end.
func (s *Session) RunScript(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Dispatch(ctx, scanner.Text()) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return s.Save()
}

// Save flushes history and aliases
func (s *Session) Save() error {
	var errs []error
	if s.History != nil {
		if err := s.History.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Aliases != nil {
		if err := s.Aliases.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
