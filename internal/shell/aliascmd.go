package shell

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/pve-cli/internal/alias"
	"github.com/quocvuong92/pve-cli/internal/display"
	"github.com/quocvuong92/pve-cli/internal/output"
)

// ErrReservedName is returned for alias names used by a shell command
var ErrReservedName = errors.New("alias name is a built-in command")

// newAliasRunCmd turns an alias into a hidden command taking its
// placeholders as arguments. Names already taken are dropped; nil is
// returned when none is left.
func (s *Session) newAliasRunCmd(def alias.Definition, taken map[string]bool, depth int, exit *bool) *cobra.Command {
	var names []string
	for _, n := range def.Names() {
		if taken[n] {
			continue
		}
		taken[n] = true
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil
	}

	placeholders := def.Placeholders()
	use := names[0]
	for _, p := range placeholders {
		use += " <" + p + ">"
	}

	return &cobra.Command{
		Use:     use,
		Aliases: names[1:],
		Short:   def.Description,
		Hidden:  true,
		Args:    cobra.ExactArgs(len(placeholders)),
		// alias arguments are values, never flags
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := alias.Render(def.Command, placeholders, args)
			if !s.OnlyResult {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, display.TitleColor(alias.Title(def, args)))
				fmt.Fprintln(out, "Command: "+command)
			}

			quit, err := s.execute(cmd.Context(), command, depth+1)
			if quit {
				*exit = true
			}
			return err
		},
	}
}

func (s *Session) newAliasCmd() *cobra.Command {
	var (
		create      bool
		remove      bool
		verbose     bool
		name        string
		description string
		command     string
	)

	cmd := &cobra.Command{
		Use:   "alias",
		Short: "List, create or remove aliases",
		Example: `  alias -v
  alias --create
  alias --create --name vmc,c --description "VM config" --command "get /nodes/{node}/qemu/{vmid}/config"
  alias --remove --name vmc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch {
			case create:
				return s.createAlias(out, name, description, command, cmd.Flags().Changed("name"))
			case remove:
				return s.removeAlias(out, name, cmd.Flags().Changed("name"))
			default:
				fmt.Fprint(out, output.AliasTable(s.Aliases.All(), verbose))
				return nil
			}
		},
	}

	cmd.Flags().BoolVarP(&create, "create", "c", false, "Create a new alias")
	cmd.Flags().BoolVarP(&remove, "remove", "r", false, "Remove an alias")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show commands and system aliases")
	cmd.Flags().StringVar(&name, "name", "", "Alias names, comma separated (skips the prompt)")
	cmd.Flags().StringVar(&description, "description", "", "Alias description")
	cmd.Flags().StringVar(&command, "command", "", "Command template, {name} marks an argument")
	cmd.MarkFlagsMutuallyExclusive("create", "remove")
	return cmd
}

func (s *Session) createAlias(out io.Writer, name, description, command string, given bool) error {
	if !given {
		if s.Input == nil {
			return errors.New("alias --create needs --name and --command here")
		}
		fmt.Fprintln(out, "Create alias (use a comma for more names)")
		var err error
		name, err = s.askName(out, "Create alias", s.checkNewAlias)
		if err != nil || name == "" {
			return err
		}
		if description, err = s.Input.ReadLine("Description: "); err != nil {
			return abortOnEOF(out, "Create alias", err)
		}
		if command, err = s.Input.ReadLine("Command: "); err != nil {
			return abortOnEOF(out, "Create alias", err)
		}
	}

	if strings.TrimSpace(command) == "" {
		fmt.Fprintln(out, "Abort create alias")
		return nil
	}
	if err := s.checkNewAlias(name); err != nil {
		return err
	}
	if err := s.Aliases.Create(name, description, command, false); err != nil {
		return err
	}
	fmt.Fprintf(out, "Alias '%s' created!\n", name)
	return nil
}

// checkNewAlias validates names for a new alias. Built-in names are refused
// since the command tree would never reach them.
func (s *Session) checkNewAlias(names string) error {
	if err := s.Aliases.Check(names); err != nil {
		return err
	}
	builtins := make(map[string]bool)
	for _, b := range BuiltinNames() {
		builtins[b] = true
	}
	for _, n := range strings.Split(names, ",") {
		if builtins[n] {
			return fmt.Errorf("%w: %s", ErrReservedName, n)
		}
	}
	return nil
}

func (s *Session) removeAlias(out io.Writer, name string, given bool) error {
	if !given {
		if s.Input == nil {
			return errors.New("alias --remove needs --name here")
		}
		fmt.Fprintln(out, "Remove alias")
		var err error
		name, err = s.askName(out, "Remove alias", func(n string) error {
			if !s.Aliases.Exists(n) {
				return fmt.Errorf("%w: %s", alias.ErrNotFound, n)
			}
			return nil
		})
		if err != nil || name == "" {
			return err
		}
	}

	if _, err := s.Aliases.Remove(name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Alias '%s' removed!\n", name)
	return nil
}

// askName prompts until check accepts the answer. A blank answer aborts
// and returns "".
func (s *Session) askName(out io.Writer, title string, check func(string) error) (string, error) {
	for {
		name, err := s.Input.ReadLine("Name: ")
		if err != nil {
			return "", abortOnEOF(out, title, err)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			fmt.Fprintf(out, "Abort %s\n", strings.ToLower(title))
			return "", nil
		}
		if err := check(name); err != nil {
			fmt.Fprintln(out, display.WarningColor(err.Error()))
			continue
		}
		return name, nil
	}
}

func abortOnEOF(out io.Writer, title string, err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintf(out, "Abort %s\n", strings.ToLower(title))
		return nil
	}
	return err
}
