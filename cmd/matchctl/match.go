package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Aidin1998/sanctions_matcher/api/responses"
	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/spf13/cobra"
)

func newCompareCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "compare NAME1 NAME2",
		Short: "Score one pair of names",
		Example: `  matchctl compare "John Smith" "Jon Smyth"
  matchctl compare --threshold 0.8 -o json "Ali Hassan" "Hassan, Ali"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := env.app.Service.Compare(cmd.Context(), args[0], args[1], env.cfg.Matching.Threshold)
			if err != nil {
				return err
			}
			out := responses.NewMatchResponse(res.Decision)
			out.Audit = responses.NewAuditStatus(res.AuditErr)
			if err := env.write(cmd.OutOrStdout(), out, func(w io.Writer) error { return writeMatch(w, out) }); err != nil {
				return err
			}
			return res.AuditErr
		},
	}
}

func newBulkCmd(env *cliEnv) *cobra.Command {
	var (
		top     int
		country string
	)
	cmd := &cobra.Command{
		Use:   "bulk NAME",
		Short: "Rank the sanctions list against a name",
		Long: `Rank every reference record against NAME.

Without --top only matches at or above the threshold are listed. With --top N
the N most probable records are listed regardless of verdict.`,
		Example: `  matchctl bulk "Ali Hassan" --country iran
  matchctl bulk "John Smith" --top 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := screening.AllAboveThreshold()
			if cmd.Flags().Changed("top") {
				mode = screening.TopN(top)
			}
			res, err := env.app.Service.BulkCompare(cmd.Context(), screening.BulkRequest{
				InputName: args[0],
				Country:   country,
				Threshold: env.cfg.Matching.Threshold,
				Mode:      mode,
			})
			if err != nil {
				return err
			}
			out := responses.NewBulkMatchResponse(res)
			out.Audit = responses.NewAuditStatus(res.AuditErr)
			if err := env.write(cmd.OutOrStdout(), out, func(w io.Writer) error { return writeCandidates(w, out) }); err != nil {
				return err
			}
			return res.AuditErr
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "list the N most probable records instead of threshold matches")
	cmd.Flags().StringVar(&country, "country", "", "restrict to records whose country contains this text")
	return cmd
}

func newLookupCmd(env *cliEnv) *cobra.Command {
	var country string
	cmd := &cobra.Command{
		Use:   "lookup NAME",
		Short: "List reference records with a similar spelling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := env.app.Service.LookupSimilar(cmd.Context(), args[0], country)
			if err != nil {
				return err
			}
			out := responses.NewSimilarSanctions(records)
			return env.write(cmd.OutOrStdout(), out, func(w io.Writer) error { return writeSimilar(w, out) })
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "restrict to records whose country contains this text")
	return cmd
}

func verdict(isMatch bool) string {
	if isMatch {
		return "MATCH"
	}
	return "no match"
}

func writeMatch(w io.Writer, m responses.MatchResponse) error {
	_, err := fmt.Fprintf(w, "%s  probability=%.4f threshold=%.2f\n", verdict(m.IsMatch), m.MatchProbability, m.Threshold)
	return err
}

func writeCandidates(w io.Writer, res responses.BulkMatchResponse) error {
	if len(res.Candidates) == 0 {
		_, err := fmt.Fprintf(w, "No matches for %q\n", res.InputName)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "ENT_NUM\tNAME\tPROBABILITY\tVERDICT\n%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 7), strings.Repeat("─", 30), strings.Repeat("─", 11), strings.Repeat("─", 8)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, c := range res.Candidates {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%.4f\t%s\n", c.EntNum, c.OFACName, c.MatchProbability, verdict(c.IsMatch)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return tw.Flush()
}

func writeSimilar(w io.Writer, records []responses.SimilarSanction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ENT_NUM\tNAME\tTYPE\tCOUNTRY\tRATIO"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\n", r.EntNum, r.SDNName, r.SDNType, r.Country, r.FuzzRatio); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return tw.Flush()
}
