package shell

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/pve-cli/internal/api"
	"github.com/quocvuong92/pve-cli/internal/constants"
	"github.com/quocvuong92/pve-cli/internal/explorer"
)

// newRoot builds the grammar of one line. exit is set by quit/exit,
// directly or through an alias.
func (s *Session) newRoot(depth int, exit *bool) *cobra.Command {
	root := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Proxmox VE shell",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.DisableSuggestions = true
	root.SetOut(s.Out)
	root.SetErr(s.Err)

	root.AddCommand(
		s.newQuitCmd(exit),
		s.newClearCmd(),
		s.newClearCacheCmd(),
		s.newClearHistoryCmd(),
		s.newHistoryCmd(),
		s.newAliasCmd(),
	)
	root.AddCommand(ResourceCommands(s.loadExplorer)...)

	taken := map[string]bool{"help": true}
	for _, c := range root.Commands() {
		taken[c.Name()] = true
		for _, a := range c.Aliases {
			taken[a] = true
		}
	}
	for _, def := range s.Aliases.All() {
		if c := s.newAliasRunCmd(def, taken, depth, exit); c != nil {
			root.AddCommand(c)
		}
	}
	return root
}

func (s *Session) loadExplorer(context.Context) (*explorer.Explorer, error) {
	if s.Explorer == nil {
		return nil, errors.New("resource tree not loaded")
	}
	return s.Explorer, nil
}

// BuiltinNames lists the first words the shell understands besides aliases
func BuiltinNames() []string {
	names := []string{"quit", "exit", "clear", "cls", "clear-cache", "clear-history", "history", "h", "alias", "help"}
	for _, c := range ResourceCommands(nil) {
		names = append(names, c.Name())
	}
	return names
}

func (s *Session) newQuitCmd(exit *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "quit",
		Aliases: []string{"exit"},
		Short:   "Close the application",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			*exit = true
			return nil
		},
	}
}

func (s *Session) newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Aliases: []string{"cls"},
		Short:   "Clear the screen",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.ClearScreen != nil {
				s.ClearScreen(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

func (s *Session) newClearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete the cached API schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := api.ClearCache(s.DataDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%d file(s) deleted)\n", n)
			return nil
		},
	}
}

func (s *Session) newClearHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-history",
		Short: "Clear the command history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.History.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		},
	}
}

func (s *Session) newHistoryCmd() *cobra.Command {
	var enabled bool

	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"h"},
		Short:   "Show the command history",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if cmd.Flags().Changed("enabled") {
				s.History.SetEnabled(enabled)
				if enabled {
					return s.History.Load()
				}
			}

			if !s.History.Enabled() {
				if !s.OnlyResult {
					fmt.Fprintln(out, "History disabled!")
				}
				return nil
			}
			for i, line := range s.History.GetAll() {
				fmt.Fprintf(out, "%d %s\n", i, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&enabled, "enabled", "e", true, "Enable or disable the history")
	return cmd
}
