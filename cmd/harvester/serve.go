package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobhunt-harvester/internal/config"
	"jobhunt-harvester/internal/events"
	"jobhunt-harvester/internal/httpapi"
	"jobhunt-harvester/internal/runner"
	"jobhunt-harvester/internal/scheduler"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local API and run harvests on demand or on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if _, err := config.EnsureUserConfig(cfgPath); err != nil {
			return err
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		var cfgVal atomic.Value // config.Config
		cfgVal.Store(cfg)

		hub := events.NewHub()
		r := runner.New(db, hub, lockPath())

		g, gctx := errgroup.WithContext(ctx)

		addr := serveAddr
		if addr == "" {
			addr = cfg.Serve.Addr
		}
		srv := &http.Server{
			Addr: addr,
			Handler: httpapi.NewHandler(httpapi.Deps{
				Store:       db,
				Hub:         hub,
				Harvester:   r,
				RunCtx:      gctx,
				CfgVal:      &cfgVal,
				UserCfgPath: cfgPath,
				LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			zap.L().Info("api listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})

		if iv := cfg.Serve.Interval.Std(); iv > 0 {
			g.Go(func() error {
				scheduler.Every(gctx, iv, "harvest", func(ctx context.Context) error {
					// picks up edits made through PUT /config
					_, err := r.RunOnce(ctx, cfgVal.Load().(config.Config))
					if errors.Is(err, runner.ErrBusy) {
						zap.L().Info("scheduled run skipped, another is in progress")
						return nil
					}
					return err
				})
				return nil
			})
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
