// Package cli implements the leadctl admin commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/getcalls/website/internal/config"
	"github.com/getcalls/website/internal/database"
	"github.com/getcalls/website/pkg/logger"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type options struct {
	output string
	debug  bool
}

// NewRootCommand builds the leadctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "leadctl",
		Short: "Admin tool for the GetCalls website",
		Long: `leadctl reads the lead and payment store used by the website server.

It uses the same environment variables as the server (DATABASE_DRIVER,
SQLITE_PATH, POSTGRES_*), so run it from the directory holding .env.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "output format (table, json)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newMigrateCmd(opts),
		newLeadsCmd(opts),
		newPaymentsCmd(opts),
		newPlansCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openDB connects with the server's database settings.
func (o *options) openDB(cmd *cobra.Command) (*bun.DB, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := o.logger(cmd.ErrOrStderr())

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to open database", logger.Error(err))
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, log, nil
}

func (o *options) validate() error {
	switch o.output {
	case outputTable, outputJSON:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table or json)", o.output)
}

// render prints v as JSON, or calls table to fill a table.
func (o *options) render(w io.Writer, v any, header []any, rows [][]any) error {
	if err := o.validate(); err != nil {
		return err
	}
	if o.output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	table := tablewriter.NewWriter(w)
	table.Header(header...)
	for _, row := range rows {
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	return table.Render()
}
