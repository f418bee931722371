package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"jobhunt-harvester/internal/config"
	"jobhunt-harvester/internal/runner"
	"jobhunt-harvester/internal/store"
)

var (
	runQuery       string
	runLocation    string
	runMaxListings int
	runMaxPages    int
	runOutputDir   string
	runNoStore     bool
	runFailEmpty   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Harvest once and write the CSV artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c := cfg
		if cmd.Flags().Changed("query") {
			c.Search.Query = runQuery
		}
		if cmd.Flags().Changed("location") {
			c.Search.Location = runLocation
		}
		if cmd.Flags().Changed("max-listings") {
			c.Limits.MaxListings = runMaxListings
		}
		if cmd.Flags().Changed("max-pages") {
			c.Limits.MaxPages = runMaxPages
		}
		if cmd.Flags().Changed("output-dir") {
			c.Output.Dir = runOutputDir
		}
		c, v := config.NormalizeAndValidate(c)
		if err := v.Err(); err != nil {
			return err
		}

		var db *store.DB
		if !runNoStore {
			var err error
			if db, err = openStore(ctx); err != nil {
				return err
			}
			defer db.Close()
		}

		r := runner.New(db, nil, lockPath())
		run, err := r.RunOnce(ctx, c)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "CSV saved: %s with %d jobs (stop: %s, pages: %d, detail faults: %d)\n",
			run.OutputPath, len(run.Listings), run.StopReason, run.Pages, run.Faults)
		if runFailEmpty && len(run.Listings) == 0 {
			return eris.New("run collected no listings")
		}
		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runQuery, "query", "q", "", "search query (default from config)")
	f.StringVarP(&runLocation, "location", "l", "", "search location (default from config)")
	f.IntVar(&runMaxListings, "max-listings", 0, "listing quota for this run")
	f.IntVar(&runMaxPages, "max-pages", 0, "page ceiling for this run (0 = none)")
	f.StringVarP(&runOutputDir, "output-dir", "o", "", "directory for the CSV artifact")
	f.BoolVar(&runNoStore, "no-store", false, "skip the run history database")
	f.BoolVar(&runFailEmpty, "fail-empty", false, "exit non-zero when nothing was collected")
	rootCmd.AddCommand(runCmd)
}
