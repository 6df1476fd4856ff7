package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Manage pages",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <path>",
		Short: "Register a page path and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			id, err := backend.SavePage(args[0])
			if err != nil {
				return err
			}
			p, _ := backend.Page(id)
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"id": id, "url": p.URL(), "http_url": p.HTTPURL(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", id, p.URL())
			return nil
		},
	})
	return cmd
}
