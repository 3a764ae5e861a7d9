package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getcalls/website/domain/leads"
)

func newLeadsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Inspect contact requests",
	}
	cmd.AddCommand(newLeadsListCmd(opts))
	return cmd
}

func newLeadsListCmd(opts *options) *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored leads, newest first",
		Long: `List stored leads, newest first.

Examples:
  leadctl leads list
  leadctl leads list --status failed --limit 20
  leadctl leads list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			switch leads.Status(status) {
			case "", leads.StatusPending, leads.StatusSent, leads.StatusFailed, leads.StatusUnconfigured:
			default:
				return fmt.Errorf("unknown status %q", status)
			}

			db, log, err := opts.openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := leads.NewRepository(db, log).List(cmd.Context(), leads.Status(status), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 && opts.output == outputTable {
				fmt.Fprintln(cmd.OutOrStdout(), "No leads found.")
				return nil
			}

			rows := make([][]any, 0, len(list))
			for _, l := range list {
				rows = append(rows, []any{
					l.CreatedAt.Local().Format("2006-01-02 15:04"),
					l.Name, l.Email, l.Phone, l.BusinessType, l.Plan, string(l.Status),
				})
			}
			return opts.render(cmd.OutOrStdout(), list,
				[]any{"Created", "Name", "Email", "Phone", "Business", "Plan", "Status"}, rows)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, sent, failed, unconfigured)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of leads")
	return cmd
}
