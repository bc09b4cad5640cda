package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quocvuong92/pve-cli/internal/api"
	"github.com/quocvuong92/pve-cli/internal/auth"
	"github.com/quocvuong92/pve-cli/internal/config"
	"github.com/quocvuong92/pve-cli/internal/display"
)

func (app *App) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [token]",
		Short: "Store a Proxmox VE API token",
		Long: `Store a Proxmox VE API token in the data directory.

The token has the form user@realm!tokenid=secret. When it is not given as an
argument it is read from the terminal without echo. If a host is configured
the token is checked against the server before it is saved.

Examples:
  pve-cli login root@pam!cli=4d9a0e5c-3f0a-4b7e-9d55-2f3c9e0f6a11
  pve-cli --host pve1.lan login`,
		Args: cobra.MaximumNArgs(1),
		RunE: app.runLogin,
	}
}

func (app *App) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE:  app.runLogout,
	}
}

func (app *App) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Args:  cobra.NoArgs,
		RunE:  app.runStatus,
	}
}

func (app *App) runLogin(cmd *cobra.Command, args []string) error {
	if err := app.localConfig(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	var raw string
	if len(args) == 1 {
		raw = args[0]
	} else {
		var err error
		if raw, err = readToken(out); err != nil {
			return err
		}
	}

	token, err := auth.ParseToken(raw)
	if err != nil {
		return err
	}

	// Check the token when we know where to send it
	if err := app.cfg.Validate(); err == nil {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sp := display.NewSpinner("Checking token on " + app.cfg.Address() + "...")
		sp.Start()
		version, err := api.NewClient(app.cfg, token).Version(ctx)
		sp.Stop()
		if err != nil {
			return fmt.Errorf("token check failed: %w", err)
		}
		fmt.Fprintf(out, "Connected to Proxmox VE %s\n", version)
	} else if !errors.Is(err, config.ErrHostNotFound) {
		return err
	}

	if err := auth.SaveToken(app.cfg.DataDir, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	display.ShowSuccess("Logged in as " + token.ID())
	return nil
}

// readToken asks for the token, hiding the input on a terminal
func readToken(out io.Writer) (string, error) {
	fmt.Fprint(out, "API token: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (app *App) runLogout(cmd *cobra.Command, args []string) error {
	if err := app.localConfig(); err != nil {
		return err
	}
	if !auth.IsLoggedIn(app.cfg.DataDir) {
		fmt.Fprintln(cmd.OutOrStdout(), "Not currently logged in.")
		return nil
	}
	if err := auth.DeleteToken(app.cfg.DataDir); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out.")
	return nil
}

func (app *App) runStatus(cmd *cobra.Command, args []string) error {
	if err := app.localConfig(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Authentication Status:")
	fmt.Fprintln(out)

	switch token, err := auth.LoadToken(app.cfg.DataDir); {
	case err == nil:
		fmt.Fprintf(out, "  Token: %s\n", token.ID())
		fmt.Fprintf(out, "  Stored at: %s\n", auth.TokenPath(app.cfg.DataDir))
	case errors.Is(err, auth.ErrNotLoggedIn):
		fmt.Fprintln(out, "  Token: not stored")
		fmt.Fprintf(out, "  Run '%s login' to store one\n", cmd.Root().Name())
	default:
		fmt.Fprintf(out, "  Token: unreadable (%v)\n", err)
	}
	if app.cfg.APIToken != "" || os.Getenv(config.EnvAPIToken) != "" {
		fmt.Fprintln(out, "  PVE_API_TOKEN or --api-token overrides the stored token")
	}
	fmt.Fprintf(out, "  Data directory: %s\n", app.cfg.DataDir)
	return nil
}
