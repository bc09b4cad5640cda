package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/pve-cli/internal/api"
	"github.com/quocvuong92/pve-cli/internal/auth"
	"github.com/quocvuong92/pve-cli/internal/config"
	"github.com/quocvuong92/pve-cli/internal/constants"
	"github.com/quocvuong92/pve-cli/internal/display"
	"github.com/quocvuong92/pve-cli/internal/explorer"
	"github.com/quocvuong92/pve-cli/internal/logging"
	"github.com/quocvuong92/pve-cli/internal/schema"
	"github.com/quocvuong92/pve-cli/internal/shell"
)

// App holds the application state
type App struct {
	cfg      *config.Config
	explorer *explorer.Explorer // loaded on first use
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg: config.NewConfig(),
	}
}

// Execute runs the root command
func Execute() {
	app := NewApp()
	if err := app.newRootCmd().Execute(); err != nil {
		display.ShowError(err.Error())
		os.Exit(1)
	}
}

func (app *App) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.AppName,
		Short: "Command line and interactive shell for the Proxmox VE API",
		Long: `pve-cli explores and calls the Proxmox VE API. The API schema is downloaded
once per server version and cached in the data directory.

Examples:
  pve-cli login root@pam!cli=4d9a0e5c-3f0a-4b7e-9d55-2f3c9e0f6a11
  pve-cli --host pve1.lan ls /nodes
  pve-cli --host pve1.lan get /nodes/pve1/qemu -o json-pretty
  pve-cli --host pve1.lan create /nodes/pve1/qemu/100/status/start --wait
  pve-cli --host pve1.lan usage /nodes/{node}/qemu -v
  pve-cli --host pve1.lan sh                 # Interactive shell
  pve-cli --host pve1.lan sh -s deploy.txt   # Run a script`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(app.cfg.Debug, os.Stderr)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.cfg.Host, "host", "", "Proxmox VE host, optionally host:port (env PVE_HOST)")
	flags.IntVar(&app.cfg.Port, "port", 0, "API port (default 8006)")
	flags.StringVar(&app.cfg.APIToken, "api-token", "", "API token user@realm!tokenid=secret (env PVE_API_TOKEN)")
	flags.BoolVarP(&app.cfg.InsecureSkipVerify, "insecure", "k", false, "Skip TLS certificate verification")
	flags.BoolVarP(&app.cfg.Debug, "debug", "d", false, "Enable debug logging")
	flags.StringVar(&app.cfg.DataDir, "data-dir", "", "Directory for cache, aliases, history and token")
	flags.StringVar(&app.cfg.SchemaFile, "schema-file", "", "Read the API schema from a file instead of the server")

	rootCmd.AddCommand(app.newShellCmd())
	rootCmd.AddCommand(shell.ResourceCommands(app.loadExplorer)...)
	rootCmd.AddCommand(app.newLoginCmd(), app.newLogoutCmd(), app.newStatusCmd(), app.newConfigCmd())

	return rootCmd
}

// loadExplorer validates the configuration and loads the resource tree the
// first time a resource command runs.
func (app *App) loadExplorer(ctx context.Context) (*explorer.Explorer, error) {
	if app.explorer != nil {
		return app.explorer, nil
	}
	if err := app.cfg.Validate(); err != nil {
		return nil, err
	}

	sp := display.NewSpinner("Loading API schema...")
	sp.Start()
	exp, err := app.newExplorer(ctx, func(msg string) { sp.Suffix("Loading API schema" + msg) })
	sp.Stop()
	if err != nil {
		return nil, err
	}
	app.explorer = exp
	return exp, nil
}

// newExplorer connects to the configured host and builds the resource
// tree. progress receives the schema loader's status fragments.
func (app *App) newExplorer(ctx context.Context, progress func(string)) (*explorer.Explorer, error) {
	token, err := auth.Resolve(app.cfg.APIToken, app.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	client := api.NewClient(app.cfg, token)

	loader := api.NewSchemaLoader(client, app.cfg.DataDir, app.cfg.Address(), app.cfg.SchemaFile)
	loader.Progress = progress

	var tree *schema.Tree
	if _, err := loader.Load(ctx, func(doc []byte) error {
		t, err := schema.Build(doc)
		if err != nil {
			return err
		}
		tree = t
		return nil
	}); err != nil {
		return nil, err
	}
	logging.Debug("resource tree loaded", logging.Fields{"host": app.cfg.Address(), "resources": tree.Len()})

	exp := explorer.New(tree, client)
	exp.TaskPoll = app.cfg.TaskPoll
	exp.TaskTimeout = app.cfg.TaskTimeout
	return exp, nil
}

// localConfig prepares the settings needed by commands that only touch
// the data directory.
func (app *App) localConfig() error {
	if fc, err := config.LoadConfigFile(); err == nil {
		app.cfg.ApplyFileConfig(fc)
	}
	return app.cfg.ResolveDataDir()
}
