package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getcalls/website/domain/payments"
)

func newPaymentsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Inspect checkout attempts",
	}
	cmd.AddCommand(newPaymentsListCmd(opts))
	return cmd
}

func newPaymentsListCmd(opts *options) *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			db, log, err := opts.openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := payments.NewRepository(db, log).List(cmd.Context(), payments.Status(status), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 && opts.output == outputTable {
				fmt.Fprintln(cmd.OutOrStdout(), "No payments found.")
				return nil
			}

			rows := make([][]any, 0, len(list))
			for _, p := range list {
				rows = append(rows, []any{
					p.CreatedAt.Local().Format("2006-01-02 15:04"),
					p.Provider, p.Plan, string(p.Billing),
					fmt.Sprintf("%s %d.%02d", p.Currency, p.AmountMinor/100, p.AmountMinor%100),
					string(p.Status), p.FailureReason,
				})
			}
			return opts.render(cmd.OutOrStdout(), list,
				[]any{"Created", "Provider", "Plan", "Billing", "Amount", "Status", "Reason"}, rows)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, succeeded, failed, cancelled, expired)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of payments")
	return cmd
}
