package shell

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/pve-cli/internal/explorer"
	"github.com/quocvuong92/pve-cli/internal/output"
	"github.com/quocvuong92/pve-cli/internal/schema"
)

// ExplorerFunc returns the explorer, loading the schema on first use when
// called from the one-shot CLI.
type ExplorerFunc func(ctx context.Context) (*explorer.Explorer, error)

var verbDescriptions = map[string]string{
	schema.VerbGet:    "Get (GET) from resource",
	schema.VerbSet:    "Set (PUT) from resource",
	schema.VerbCreate: "Create (POST) from resource",
	schema.VerbDelete: "Delete (DELETE) from resource",
}

// ResourceCommands returns get, set, create, delete, usage and ls. They are
// shared by the shell and the outer CLI.
func ResourceCommands(load ExplorerFunc) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(schema.Verbs)+2)
	for _, verb := range schema.Verbs {
		cmds = append(cmds, newVerbCmd(verb, load))
	}
	return append(cmds, newUsageCmd(load), newListCmd(load))
}

func newVerbCmd(verb string, load ExplorerFunc) *cobra.Command {
	var (
		verbose bool
		wait    bool
		format  output.FormatFlag
	)

	cmd := &cobra.Command{
		Use:   verb + " <resource> [name:value...]",
		Short: verbDescriptions[verb],
		Example: fmt.Sprintf("  %s /nodes/pve1/qemu/100/config\n  %s /nodes/pve1/qemu/100/config -o json-pretty",
			verb, verb),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := explorer.ParseParameters(args[1:])
			if err != nil {
				return fmt.Errorf("%w: %w", ErrParse, err)
			}
			exp, err := load(cmd.Context())
			if err != nil {
				return err
			}

			text, err := exp.Execute(cmd.Context(), explorer.Invocation{
				Verb:    verb,
				Path:    args[0],
				Params:  params,
				Wait:    wait,
				Verbose: verbose,
				Output:  format.Format,
			})
			fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the full response")
	cmd.Flags().VarP(&format, "output", "o", "Output format: text, json, json-pretty, png")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the task to finish")
	return cmd
}

func newUsageCmd(load ExplorerFunc) *cobra.Command {
	var (
		verbose bool
		returns bool
		verb    string
	)

	cmd := &cobra.Command{
		Use:   "usage <resource>",
		Short: "Usage resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verb != "" {
				if _, ok := schema.HTTPMethod(verb); !ok {
					return fmt.Errorf("%w: unknown command %q", ErrParse, verb)
				}
			}
			exp, err := load(cmd.Context())
			if err != nil {
				return err
			}
			text, err := exp.Usage(args[0], verb, returns, verbose)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show descriptions and parameters")
	cmd.Flags().BoolVarP(&returns, "returns", "r", false, "Include the schema of the returned data")
	cmd.Flags().StringVarP(&verb, "command", "c", "", "Only this command: get, set, create, delete")
	return cmd
}

func newListCmd(load ExplorerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [resource]",
		Short: "List child objects of a resource",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			exp, err := load(cmd.Context())
			if err != nil {
				return err
			}
			text, err := exp.List(cmd.Context(), path)
			fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
}
