package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"jobhunt-harvester/internal/domain"
	"jobhunt-harvester/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect harvest run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := db.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}
		formatRunsList(os.Stdout, runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its listings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		run, err := db.GetRun(ctx, args[0])
		if errors.Is(err, store.ErrRunNotFound) {
			return eris.Errorf("no run with id %s", args[0])
		}
		if err != nil {
			return err
		}
		listings, err := db.RunListings(ctx, run.ID)
		if err != nil {
			return err
		}
		formatRun(os.Stdout, run, listings)
		return nil
	},
}

func formatRunsList(w io.Writer, runs []store.RunSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tQUERY\tLISTINGS\tPAGES\tSTOP\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Query,
			r.Listings, r.Pages, r.StopReason, r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}
	_ = tw.Flush()
}

func formatRun(w io.Writer, r store.RunSummary, listings []domain.EnrichedListing) {
	fmt.Fprintf(w, "Run:        %s\n", r.ID)
	fmt.Fprintf(w, "Query:      %s (%s)\n", r.Query, r.Location)
	fmt.Fprintf(w, "Started:    %s\n", r.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "Stop:       %s after %d page(s)\n", r.StopReason, r.Pages)
	fmt.Fprintf(w, "Output:     %s\n", r.OutputPath)
	fmt.Fprintf(w, "Listings:   %d (%d detail faults)\n\n", r.Listings, r.DetailFaults)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tCOMPANY\tLOCATION\tTYPE\tPAY")
	for i, l := range listings {
		pay := ""
		if l.Pay.Min != "" {
			pay = "$" + l.Pay.Min
			if l.Pay.Max != "" {
				pay += "-$" + l.Pay.Max
			}
			pay += "/" + string(l.Pay.Unit)
		}
		loc := l.City
		if l.State != "" {
			loc += ", " + l.State
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, l.Title, l.Company, loc, l.EmploymentType, pay)
	}
	_ = tw.Flush()
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum runs to show")
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
