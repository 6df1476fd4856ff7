package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage comment authors",
	}

	var email string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create or update a user and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			id, err := backend.SaveUser(args[0], email)
			if err != nil {
				return err
			}
			u, err := backend.User(id)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"id": u.ID(), "name": u.Name(), "email": u.Email(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", u.ID(), u.Name())
			return nil
		},
	}
	add.Flags().StringVar(&email, "email", "", "email address")
	cmd.AddCommand(add)
	return cmd
}
