// Package runner performs one complete harvest: controller run, CSV
// artifact, history row and progress events. It is shared by the CLI and
// the HTTP API.
package runner

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"jobhunt-harvester/internal/config"
	"jobhunt-harvester/internal/domain"
	"jobhunt-harvester/internal/events"
	"jobhunt-harvester/internal/export"
	"jobhunt-harvester/internal/harvest"
	"jobhunt-harvester/internal/scrape/board"
	"jobhunt-harvester/internal/scrape/fetch"
	"jobhunt-harvester/internal/scrape/util"
	"jobhunt-harvester/internal/store"
)

// ErrBusy means another run holds the run lock, in this process or another.
var ErrBusy = errors.New("runner: a run is already in progress")

type Status struct {
	Running        bool   `json:"running"`
	RunID          string `json:"run_id,omitempty"`
	LastRunAt      string `json:"last_run_at"`
	LastOkAt       string `json:"last_ok_at"`
	LastError      string `json:"last_error"`
	LastListings   int    `json:"last_listings"`
	LastStopReason string `json:"last_stop_reason"`
	LastOutput     string `json:"last_output,omitempty"`
}

type Runner struct {
	Store    *store.DB   // optional
	Hub      *events.Hub // optional
	LockPath string      // empty disables the cross-process lock

	NewSource func(cfg config.Config) harvest.Source
	NewPacer  func(cfg config.Config) util.Pacer
	Now       func() time.Time

	busy   atomic.Bool
	status atomic.Value // Status
}

func New(db *store.DB, hub *events.Hub, lockPath string) *Runner {
	r := &Runner{
		Store:     db,
		Hub:       hub,
		LockPath:  lockPath,
		NewSource: BoardSource,
		NewPacer:  RandomPacer,
		Now:       time.Now,
	}
	r.status.Store(Status{})
	return r
}

// BoardSource wires the production transport: one shared client with a
// per-host rate floor under a board reader.
func BoardSource(cfg config.Config) harvest.Source {
	client := fetch.New(fetch.Options{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout.Std(),
		Retries:   cfg.HTTP.Retries,
		Limiter:   util.NewHostLimiter(cfg.Pacing.RequestsPerSecond, cfg.Pacing.Burst),
	})
	return board.New(board.Config{
		BaseURL:             cfg.Search.BaseURL,
		Query:               cfg.Search.Query,
		Location:            cfg.Search.Location,
		FreshnessDays:       cfg.Search.FreshnessDays,
		ResultsPerPage:      cfg.Search.ResultsPerPage,
		MaxDescriptionChars: cfg.Limits.MaxDescriptionChars,
	}, client)
}

func RandomPacer(cfg config.Config) util.Pacer {
	p := cfg.Pacing
	return util.NewRandomPacer(
		util.Window{Min: p.ListingMin.Std(), Max: p.ListingMax.Std()},
		util.Window{Min: p.PageMin.Std(), Max: p.PageMax.Std()},
	)
}

func (r *Runner) Status() Status {
	st, _ := r.status.Load().(Status)
	return st
}

func (r *Runner) Busy() bool { return r.busy.Load() }

// RunOnce harvests with cfg and persists the result. A run that collects
// nothing is not an error; the returned error covers the lock, the
// artifact and the history store.
func (r *Runner) RunOnce(ctx context.Context, cfg config.Config) (domain.Run, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return domain.Run{}, ErrBusy
	}
	defer r.busy.Store(false)

	if r.LockPath != "" {
		lock := flock.New(r.LockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return domain.Run{}, eris.Wrapf(err, "runner: lock %s", r.LockPath)
		}
		if !ok {
			return domain.Run{}, ErrBusy
		}
		defer func() { _ = lock.Unlock() }()
	}

	run := domain.Run{
		ID:        uuid.NewString(),
		Query:     cfg.Search.Query,
		Location:  cfg.Search.Location,
		StartedAt: r.Now(),
	}
	r.markStarted(run)
	zap.L().Info("runner: harvest started",
		zap.String("run_id", run.ID),
		zap.String("query", run.Query),
		zap.String("location", run.Location),
	)

	ctrl := harvest.New(r.NewSource(cfg), r.NewPacer(cfg), harvest.Options{
		MaxListings: cfg.Limits.MaxListings,
		MaxPages:    cfg.Limits.MaxPages,
		OnListing: func(pos int, l domain.EnrichedListing) {
			r.Hub.Emit(events.TypeListingAdded, events.ListingAdded{
				RunID:    run.ID,
				Position: pos,
				Title:    l.Title,
				Company:  l.Company,
				City:     l.City,
				State:    l.State,
				Failed:   l.DetailFailed,
			})
		},
	})
	res := ctrl.Run(ctx)

	run.FinishedAt = r.Now()
	run.StopReason = string(res.Report.StopReason)
	run.Pages = res.Report.Pages
	run.Faults = res.Report.DetailFaults
	run.Listings = res.Listings.Listings()

	err := r.persist(ctx, cfg, &run)
	r.markFinished(run, err)
	return run, err
}

func (r *Runner) persist(ctx context.Context, cfg config.Config, run *domain.Run) error {
	path := filepath.Join(cfg.Output.Dir, export.FileName(cfg.Output.CSVPattern, cfg.Search.Query, run.StartedAt))
	row := export.BuildRow(export.Meta{
		Query:     cfg.Search.Query,
		Category:  cfg.Output.Category,
		Published: run.StartedAt,
	}, run.Listings)
	if err := export.WriteCSV(path, row); err != nil {
		return err
	}
	run.OutputPath = path
	zap.L().Info("runner: CSV saved", zap.String("path", path), zap.Int("listings", len(run.Listings)))

	if r.Store == nil {
		return nil
	}
	// history must survive a cancelled harvest
	sctx := context.WithoutCancel(ctx)
	if err := r.Store.SaveRun(sctx, *run); err != nil {
		return err
	}
	if ret := cfg.Store.Retention.Std(); ret > 0 {
		n, err := r.Store.CleanupOldRuns(sctx, ret)
		if err != nil {
			zap.L().Warn("runner: cleanup old runs failed", zap.Error(err))
		} else if n > 0 {
			zap.L().Info("runner: old runs removed", zap.Int64("deleted", n))
		}
	}
	return nil
}

func (r *Runner) markStarted(run domain.Run) {
	st := r.Status()
	st.Running = true
	st.RunID = run.ID
	st.LastRunAt = run.StartedAt.Format(time.RFC3339)
	r.status.Store(st)

	r.Hub.Emit(events.TypeRunStarted, events.RunStarted{
		RunID:    run.ID,
		Query:    run.Query,
		Location: run.Location,
	})
}

func (r *Runner) markFinished(run domain.Run, err error) {
	st := r.Status()
	st.Running = false
	st.LastListings = len(run.Listings)
	st.LastStopReason = run.StopReason
	st.LastOutput = run.OutputPath

	fin := events.RunFinished{
		RunID:      run.ID,
		StopReason: run.StopReason,
		Pages:      run.Pages,
		Listings:   len(run.Listings),
		OutputPath: run.OutputPath,
	}
	if err != nil {
		st.LastError = err.Error()
		fin.Error = err.Error()
		zap.L().Error("runner: harvest failed", zap.String("run_id", run.ID), zap.Error(err))
	} else {
		st.LastError = ""
		st.LastOkAt = run.FinishedAt.Format(time.RFC3339)
	}
	r.status.Store(st)
	r.Hub.Emit(events.TypeRunFinished, fin)
}
