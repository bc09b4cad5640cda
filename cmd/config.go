package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/pve-cli/internal/config"
	"github.com/quocvuong92/pve-cli/internal/display"
)

func (app *App) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a commented config.yaml to the user config directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfigFile()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			display.ShowSuccess("Config file created, edit it to set the host")
			return nil
		},
	})
	return cmd
}
