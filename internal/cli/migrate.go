package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getcalls/website/internal/migrate"
)

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
		Long: `Apply or inspect the embedded database migrations.

Examples:
  leadctl migrate          Apply all pending migrations
  leadctl migrate down     Roll back the latest migration
  leadctl migrate status   Print the current schema version`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, opts, "up")
		},
	}

	for _, sub := range []struct{ use, short string }{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the latest migration"},
		{"status", "Print the current schema version"},
	} {
		action := sub.use
		cmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(cmd, opts, action)
			},
		})
	}
	return cmd
}

func runMigration(cmd *cobra.Command, opts *options, action string) error {
	db, log, err := opts.openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	m := migrate.NewMigrator(db, log)
	ctx := cmd.Context()

	switch action {
	case "up":
		if err := m.Up(ctx); err != nil {
			return err
		}
	case "down":
		if err := m.Down(ctx); err != nil {
			return err
		}
	}

	v, err := m.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", v)
	return nil
}
