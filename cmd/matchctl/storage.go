package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Aidin1998/sanctions_matcher/api/responses"
	"github.com/Aidin1998/sanctions_matcher/internal/compliance/refdata"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// seedChunk is the number of records upserted per progress step.
const seedChunk = 500

var storageOnly = map[string]string{annotationStorageOnly: "true"}

func newMigrateCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:         "migrate",
		Short:       "Create or update the database tables",
		Args:        cobra.NoArgs,
		Annotations: storageOnly,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.app.Migrate(); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return err
		},
	}
}

func newSeedCmd(env *cliEnv) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "seed FILE.csv",
		Short: "Load the sanctions list from a CSV export",
		Long: `Load reference records from a CSV file with the columns
ent_num, sdn_name, sdn_type and country (header required, any order).

Existing records with the same ent_num are replaced. The "-0-" placeholder is
read as an empty value. Cached snapshots are invalidated afterwards.`,
		Args:        cobra.ExactArgs(1),
		Annotations: storageOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			records, err := refdata.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if err := env.app.Migrate(); err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			if !quiet {
				bar = progressbar.NewOptions(len(records),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionShowCount(),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription("Loading sanctions list..."),
					progressbar.OptionOnCompletion(func() {
						_, _ = fmt.Fprintln(cmd.ErrOrStderr())
					}),
				)
			}

			ctx := cmd.Context()
			for start := 0; start < len(records); start += seedChunk {
				end := start + seedChunk
				if end > len(records) {
					end = len(records)
				}
				if err := env.app.References.Upsert(ctx, records[start:end]); err != nil {
					return fmt.Errorf("failed to load records %d-%d: %w", start, end-1, err)
				}
				if bar != nil {
					if err := bar.Add(end - start); err != nil {
						env.logger.Warn("failed to update progress bar", zap.Error(err))
					}
				}
			}

			if err := env.app.InvalidateCache(ctx); err != nil {
				env.logger.Warn("failed to invalidate reference cache", zap.Error(err))
			}
			total, err := env.app.References.Count(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d records (%d in table)\n", len(records), total)
			return err
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show a progress bar")
	return cmd
}

func newAuditCmd(env *cliEnv) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:         "audit",
		Short:       "Show the most recent recorded decisions",
		Args:        cobra.NoArgs,
		Annotations: storageOnly,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			rows, err := env.app.Audit.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			entries := responses.NewPredictionLogEntries(rows)
			return env.write(cmd.OutOrStdout(), entries, func(w io.Writer) error {
				return writeEntries(w, entries)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of decisions to show")
	return cmd
}

func writeEntries(w io.Writer, entries []responses.PredictionLogEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "TIME\tROUTE\tINPUT\tMATCHED\tPROBABILITY\tVERDICT"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.4f\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.SourceRoute,
			strings.TrimSpace(e.InputText), e.Name, e.Probability, verdict(e.IsMatch)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return tw.Flush()
}
