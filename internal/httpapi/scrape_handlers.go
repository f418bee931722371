package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"

	"jobhunt-harvester/internal/config"
	"jobhunt-harvester/internal/runner"
)

type ScrapeHandler struct {
	CfgVal    *atomic.Value // config.Config
	Harvester Harvester
	RunCtx    context.Context
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Harvester.Status())
}

// Run starts a harvest in the background and answers right away. Progress
// arrives on /events.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Harvester.Busy() {
		WriteError(w, r, http.StatusConflict, CodeRunInProgress, "a run is already in progress")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	ctx := h.RunCtx
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		_, err := h.Harvester.RunOnce(ctx, cfg)
		switch {
		case errors.Is(err, runner.ErrBusy):
			zap.L().Info("httpapi: run skipped, another is in progress")
		case err != nil:
			zap.L().Error("httpapi: run failed", zap.Error(err))
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
