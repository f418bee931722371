package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobhunt-harvester/internal/config"
	"jobhunt-harvester/internal/store"
)

var (
	cfgPath string
	cfg     config.Config
)

// Commands carrying this annotation read the config themselves.
const skipConfigLoad = "skip-config-load"

var rootCmd = &cobra.Command{
	Use:           "harvester",
	Short:         "Harvest job listings into a one-row CSV per run",
	Long:          "Pages through job board search results, enriches each listing from its detail page and writes the run as a single CSV row plus a local history entry.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfigLoad] == "true" {
			return config.InitLogger(config.Default().Log)
		}

		c, err := config.Load(cfgPath)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yml", "config file (missing file means defaults)")
}

func openStore(ctx context.Context) (*store.DB, error) {
	return store.Open(ctx, cfg.Store.Path)
}

func lockPath() string {
	return cfg.Store.Path + ".lock"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("harvester failed", zap.Error(err))
		os.Stderr.WriteString("error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
