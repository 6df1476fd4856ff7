package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize commentary storage",
		Long:  "Create the configuration and data directories, then initialize the database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			if err := backend.Detach(); err != nil {
				return fmt.Errorf("finalize storage: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Commentary initialized")
			fmt.Fprintf(out, "config: %s\n", filepath.Join(a.configDir, configFileExt))
			fmt.Fprintf(out, "data:   %s\n", a.cfg.DataDir)
			return nil
		},
	}
}
