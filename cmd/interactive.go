package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quocvuong92/pve-cli/internal/alias"
	"github.com/quocvuong92/pve-cli/internal/constants"
	"github.com/quocvuong92/pve-cli/internal/display"
	"github.com/quocvuong92/pve-cli/internal/explorer"
	"github.com/quocvuong92/pve-cli/internal/history"
	"github.com/quocvuong92/pve-cli/internal/logging"
	"github.com/quocvuong92/pve-cli/internal/shell"
)

// InteractiveSession feeds prompt lines to a shell session.
// It owns the exit flag go-prompt polls and a per-line completion cache.
type InteractiveSession struct {
	ctx       context.Context
	shell     *shell.Session
	exitFlag  bool
	sessionID string

	// completions caches the children listed for "verb /path/" prefixes
	// until the next line runs
	completions map[string][]string
}

func (app *App) newShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sh",
		Short: "Interactive shell",
		Long: `Start the interactive shell, or run a script through it.

Inside the shell every line is a command: get, set, create, delete, usage,
ls, alias, history, clear-cache, clear-history, clear and quit, plus the
aliases. Lines starting with # are comments.

When stdin is not a terminal the script is read from stdin.

Examples:
  pve-cli sh
  pve-cli sh --script deploy.txt
  echo "ls /nodes" | pve-cli sh -r`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runShell(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&app.cfg.ScriptFile, "script", "s", "", "Run the commands of a script file, - for stdin")
	cmd.Flags().BoolVarP(&app.cfg.OnlyResult, "only-result", "r", false, "Print only the results of commands")
	return cmd
}

// runShell loads the resource tree, then runs the script or the prompt.
func (app *App) runShell(ctx context.Context, out, errOut io.Writer) error {
	if err := app.cfg.Validate(); err != nil {
		return err
	}
	onlyResult := app.cfg.OnlyResult
	if onlyResult {
		display.DisableColors()
		display.Quiet = true
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	script, err := app.openScript()
	if err != nil {
		return err
	}
	if script != nil {
		defer script.Close()
	}

	sessionID := uuid.New().String()
	log := logging.With(logging.Fields{"session": sessionID})
	log.Info("shell started", logging.Fields{"host": app.cfg.Address(), "script": script != nil})

	if !onlyResult {
		printBanner(out, app.cfg.Address())
	}

	exp, err := app.initMetadata(ctx, out, onlyResult)
	if err != nil {
		return err
	}
	app.explorer = exp

	sess, err := app.newSession(exp, script == nil, out, errOut)
	if err != nil {
		return err
	}

	if script != nil {
		err := sess.RunScript(ctx, script)
		log.Info("script finished", logging.Fields{"error": err != nil})
		return err
	}

	is := &InteractiveSession{ctx: ctx, shell: sess, sessionID: sessionID}
	is.run()
	log.Info("shell closed")
	return nil
}

func printBanner(w io.Writer, address string) {
	fmt.Fprintln(w, display.TitleColor(constants.AppName+" for Proxmox VE ("+address+")"))
	fmt.Fprintln(w, "Type '<TAB>' for completion word")
	fmt.Fprintln(w, "Type 'help', 'quit' to close the application.")
	fmt.Fprintln(w)
}

// initMetadata loads the resource tree and reports where it came from and
// how long it took.
func (app *App) initMetadata(ctx context.Context, w io.Writer, onlyResult bool) (*explorer.Explorer, error) {
	status := "Initialization metadata"
	sp := display.NewSpinner(status)
	sp.Start()

	start := time.Now()
	exp, err := app.newExplorer(ctx, func(msg string) {
		status += msg
		sp.Suffix(status)
	})
	sp.Stop()
	if err != nil {
		return nil, err
	}

	if !onlyResult {
		fmt.Fprintf(w, "%s %dms\n\n", status, time.Since(start).Milliseconds())
	}
	return exp, nil
}

// openScript returns the script to run, nil for an interactive session.
// "-" or a redirected stdin reads the script from stdin.
func (app *App) openScript() (io.ReadCloser, error) {
	switch app.cfg.ScriptFile {
	case "":
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil
		}
		return io.NopCloser(os.Stdin), nil
	case "-":
		return io.NopCloser(os.Stdin), nil
	default:
		f, err := os.Open(app.cfg.ScriptFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open script: %w", err)
		}
		return f, nil
	}
}

// newSession loads aliases and history from the data directory. System
// aliases are seeded into a new alias file only, so removing one sticks.
func (app *App) newSession(exp *explorer.Explorer, interactive bool, out, errOut io.Writer) (*shell.Session, error) {
	aliases := alias.NewStore(app.cfg.DataPath(constants.AliasFileName))
	_, statErr := os.Stat(aliases.Path())
	if err := aliases.Load(); err != nil {
		return nil, err
	}
	if os.IsNotExist(statErr) {
		defs, err := alias.SystemAliases()
		if err != nil {
			return nil, err
		}
		n := aliases.Seed(defs)
		logging.Debug("system aliases added", logging.Fields{"count": n})
	}

	hist := history.NewStore(app.cfg.DataPath(constants.HistoryFileName))
	if err := hist.Load(); err != nil {
		logging.Warn("history not loaded", logging.Fields{"error": err.Error()})
	}

	sess := shell.NewSession(exp, aliases, hist, app.cfg.DataDir)
	sess.OnlyResult = app.cfg.OnlyResult
	sess.Out, sess.Err = out, errOut
	if interactive {
		sess.Input = shell.NewLineReader(os.Stdin, out)
	}
	return sess, nil
}

func (s *InteractiveSession) run() {
	p := prompt.New(
		s.executor,
		prompt.WithCompleter(s.completer),
		prompt.WithPrefix(">>> "),
		prompt.WithTitle(constants.AppName),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithSuggestionBGColor(prompt.DarkBlue),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkBlue),
		prompt.WithDescriptionTextColor(prompt.LightGray),
		prompt.WithSelectedDescriptionBGColor(prompt.Cyan),
		prompt.WithSelectedDescriptionTextColor(prompt.Black),
		prompt.WithMaxSuggestion(15),
		prompt.WithCompletionOnDown(),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return s.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				s.save()
				s.exitFlag = true
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					s.save()
					s.exitFlag = true
				}
				return false
			},
		}),
	)

	p.Run()
}

// executor runs one typed line and checkpoints history and aliases
func (s *InteractiveSession) executor(input string) {
	if s.exitFlag {
		return
	}

	if strings.TrimSpace(input) != "" {
		s.shell.History.Add(input)
	}
	s.exitFlag = s.shell.Dispatch(s.ctx, input)
	s.completions = nil
	s.save()
}

func (s *InteractiveSession) save() {
	if err := s.shell.Save(); err != nil {
		display.ShowWarning("Could not save session: " + err.Error())
	}
}

// completer suggests the next path segment after a resource verb, and
// command or alias names for the first word.
func (s *InteractiveSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()

	if shell.Completable(text) {
		cut := strings.LastIndex(text, "/") + 1
		dir, segment := text[:cut], text[cut:]
		startIndex := endIndex - istrings.RuneCountInString(segment)

		var suggestions []prompt.Suggest
		for _, v := range s.children(dir) {
			suggestions = append(suggestions, prompt.Suggest{Text: v})
		}
		return prompt.FilterHasPrefix(suggestions, segment, false), startIndex, endIndex
	}

	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)
	if strings.ContainsAny(strings.TrimLeft(text, " "), " \t") {
		return []prompt.Suggest{}, startIndex, endIndex
	}
	return prompt.FilterHasPrefix(s.commandSuggestions(), w, true), startIndex, endIndex
}

// children lists dir ("get /nodes/") once per line typed
func (s *InteractiveSession) children(dir string) []string {
	if values, ok := s.completions[dir]; ok {
		return values
	}
	if s.completions == nil {
		s.completions = map[string][]string{}
	}
	values := s.shell.Complete(s.ctx, dir)
	s.completions[dir] = values
	return values
}

func (s *InteractiveSession) commandSuggestions() []prompt.Suggest {
	var suggestions []prompt.Suggest
	for _, name := range shell.BuiltinNames() {
		suggestions = append(suggestions, prompt.Suggest{Text: name})
	}
	for _, def := range s.shell.Aliases.All() {
		for _, name := range def.Names() {
			suggestions = append(suggestions, prompt.Suggest{Text: name, Description: def.Description})
		}
	}
	return suggestions
}
