package httpapi

import (
	"context"
	"sync/atomic"

	"jobhunt-harvester/internal/config"
	"jobhunt-harvester/internal/domain"
	"jobhunt-harvester/internal/events"
	"jobhunt-harvester/internal/runner"
	"jobhunt-harvester/internal/store"
)

// Harvester is the part of *runner.Runner the API drives.
type Harvester interface {
	RunOnce(ctx context.Context, cfg config.Config) (domain.Run, error)
	Status() runner.Status
	Busy() bool
}

type Deps struct {
	Store *store.DB
	Hub   *events.Hub

	Harvester Harvester
	// RunCtx bounds runs started over HTTP; they outlive the request.
	RunCtx context.Context

	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}

// allowedOrigins reads serve.allowed_origins from the live config, so a
// saved edit applies to the next request.
func (d Deps) allowedOrigins() []string {
	if d.CfgVal == nil {
		return nil
	}
	cfg, ok := d.CfgVal.Load().(config.Config)
	if !ok {
		return nil
	}
	return cfg.Serve.AllowedOrigins
}
