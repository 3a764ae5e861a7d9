package cli

import (
	"github.com/spf13/cobra"

	"github.com/getcalls/website/domain/payments"
)

func newPlansCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "Show the plan catalog compiled into this build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := payments.NewCatalog()
			if err != nil {
				return err
			}

			rows := make([][]any, 0, len(catalog.Plans))
			for _, p := range catalog.Plans {
				rows = append(rows, []any{
					p.ID, p.Name,
					catalog.Format(p.OneTime), catalog.Format(p.Monthly),
				})
			}
			return opts.render(cmd.OutOrStdout(), catalog,
				[]any{"ID", "Name", "One-time", "Monthly"}, rows)
		},
	}
}
