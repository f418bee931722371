// Package harvest drives one run: search pages in order, one detail page
// per surviving candidate, until a stop condition is hit.
package harvest

import (
	"context"
	"iter"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"jobhunt-harvester/internal/domain"
	"jobhunt-harvester/internal/scrape/fetch"
	"jobhunt-harvester/internal/scrape/util"
)

type State string

const (
	Fetching State = "FETCHING"
	Done     State = "DONE"
)

type StopReason string

const (
	StopQuota     StopReason = "quota"
	StopNoResults StopReason = "no_results"
	StopBlocked   StopReason = "blocked"
	StopLastPage  StopReason = "last_page"
	StopPageLimit StopReason = "page_limit"
	StopCancelled StopReason = "cancelled"
)

// Source is one job board. *board.Board satisfies it.
type Source interface {
	ResultsPerPage() int
	SearchPage(ctx context.Context, page int) (*goquery.Document, error)
	ExtractListings(doc *goquery.Document) iter.Seq[domain.ListingSummary]
	FetchDetail(ctx context.Context, detailURL string) domain.Detail
}

type Options struct {
	MaxListings int
	MaxPages    int // 0 means no ceiling

	// OnListing sees each listing right after it is appended.
	OnListing func(position int, l domain.EnrichedListing)
}

type Report struct {
	State        State      `json:"state"`
	StopReason   StopReason `json:"stop_reason"`
	Pages        int        `json:"pages"`      // search pages fetched successfully
	Candidates   int        `json:"candidates"` // candidates that reached the detail step
	DetailFaults int        `json:"detail_faults"`
	PageError    string     `json:"page_error,omitempty"` // the fault that ended the run
}

type Result struct {
	Listings *domain.RunCollection
	Report   Report
}

type Controller struct {
	src   Source
	pacer util.Pacer
	opts  Options
}

func New(src Source, pacer util.Pacer, opts Options) *Controller {
	if pacer == nil {
		pacer = util.NoDelay{}
	}
	return &Controller{src: src, pacer: pacer, opts: opts}
}

// Run never fails. Whatever was collected before a stop condition is
// returned, possibly nothing.
func (c *Controller) Run(ctx context.Context) Result {
	coll := domain.NewRunCollection(c.opts.MaxListings)
	rep := Report{State: Fetching}

	for page := 0; rep.State == Fetching; page++ {
		if reason, done := c.step(ctx, page, coll, &rep); done {
			rep.State = Done
			rep.StopReason = reason
		}
	}

	zap.L().Info("harvest: run finished",
		zap.String("stop_reason", string(rep.StopReason)),
		zap.Int("pages", rep.Pages),
		zap.Int("listings", coll.Len()),
		zap.Int("detail_faults", rep.DetailFaults),
	)
	return Result{Listings: coll, Report: rep}
}

// step processes one results page. It reports whether the run is done and
// why.
func (c *Controller) step(ctx context.Context, page int, coll *domain.RunCollection, rep *Report) (StopReason, bool) {
	if ctx.Err() != nil {
		return StopCancelled, true
	}

	doc, err := c.src.SearchPage(ctx, page)
	if err != nil {
		if ctx.Err() != nil {
			return StopCancelled, true
		}
		rep.PageError = err.Error()
		fields := []zap.Field{zap.Int("page", page), zap.Error(err)}
		if f, ok := fetch.AsFault(err); ok {
			fields = append(fields, zap.String("kind", string(f.Kind)), zap.Int("status", f.StatusCode))
		}
		zap.L().Warn("harvest: search page failed, stopping", fields...)
		return StopBlocked, true
	}
	rep.Pages++

	surviving := 0
	for s := range c.src.ExtractListings(doc) {
		if coll.Full() {
			return StopQuota, true
		}
		surviving++
		rep.Candidates++

		d := c.src.FetchDetail(ctx, s.DetailURL)
		if ctx.Err() != nil {
			return StopCancelled, true
		}
		l := domain.NewEnrichedListing(s, util.SplitLocation(s.RawLocation), d, util.SourceID(s.DetailURL))
		coll.Append(l)
		if d.Failed {
			rep.DetailFaults++
		}
		zap.L().Info("✓ "+l.Title+" - "+l.Company, zap.Int("position", coll.Len()))
		if c.opts.OnListing != nil {
			c.opts.OnListing(coll.Len(), l)
		}

		if coll.Full() {
			return StopQuota, true
		}
		if err := c.pacer.AfterListing(ctx); err != nil {
			return StopCancelled, true
		}
	}

	zap.L().Info("harvest: page done", zap.Int("page", page), zap.Int("candidates", surviving))
	switch {
	case surviving == 0:
		return StopNoResults, true
	case surviving < c.src.ResultsPerPage():
		return StopLastPage, true
	case c.opts.MaxPages > 0 && rep.Pages >= c.opts.MaxPages:
		return StopPageLimit, true
	}
	if err := c.pacer.AfterPage(ctx); err != nil {
		return StopCancelled, true
	}
	return "", false
}
