package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/commentary/internal/format"
)

func newFieldCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Manage comments fields",
	}

	var formatters []string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create or update a comments field and print its id",
		Long: "Create or update a comments field. Formatters are applied to comment\n" +
			"text in order; known names are " + strings.Join(format.Names(), ", ") + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if unknown := format.Unknown(formatters); len(unknown) > 0 {
				a.log.Warn().Strs("formatters", unknown).Msg("unknown formatters are skipped when rendering")
			}

			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			id, err := backend.SaveField(args[0], formatters)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"id": id, "name": strings.TrimSpace(args[0]), "formatters": formatters,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", id, strings.TrimSpace(args[0]))
			return nil
		},
	}
	add.Flags().StringSliceVar(&formatters, "formatters", nil, "text formatters, comma separated")
	cmd.AddCommand(add)
	return cmd
}
