package board

import (
	"bytes"
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"jobhunt-harvester/internal/domain"
	"jobhunt-harvester/internal/scrape/fetch"
	"jobhunt-harvester/internal/scrape/util"
)

const (
	NoDescription    = "No description"
	FetchErrorMarker = "Error fetching description"
)

var (
	descriptionChain = []util.Strategy{
		util.SpacedText("#jobDescriptionText"),
		util.SpacedText(".jobsearch-jobDescriptionText"),
		util.SpacedText("[data-testid='jobDescriptionText']"),
	}
	payChain = []util.Strategy{
		util.Text("#salaryInfoAndJobType"),
		util.Text(".attribute_snippet"),
		util.Text("[data-testid='attribute_snippet_testid']"),
		util.Text(".salary-snippet"),
	}
	applyChain = []util.Strategy{
		util.Attr("#applyButtonLinkContainer a[href]", "href"),
		util.Attr("a.icl-Button[href*='apply']", "href"),
	}
)

// SentinelDetail stands in for a detail page that could not be fetched so
// the listing still counts as one record.
func SentinelDetail() domain.Detail {
	return domain.Detail{
		Description:    FetchErrorMarker,
		EmploymentType: domain.EmploymentUnknown,
		Failed:         true,
	}
}

// FetchDetail never fails: transport and parse problems produce a
// SentinelDetail.
func (b *Board) FetchDetail(ctx context.Context, detailURL string) domain.Detail {
	resp, err := b.g.Get(ctx, detailURL, nil)
	if err != nil {
		kind := "unknown"
		if f, ok := fetch.AsFault(err); ok {
			kind = string(f.Kind)
		}
		zap.L().Warn("board: detail fetch failed",
			zap.String("url", detailURL),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return SentinelDetail()
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		zap.L().Warn("board: detail parse failed", zap.String("url", detailURL), zap.Error(err))
		return SentinelDetail()
	}
	return b.ParseDetail(doc, b.now())
}

// ParseDetail reads a detail document fetched at fetchedAt.
func (b *Board) ParseDetail(doc *goquery.Document, fetchedAt time.Time) domain.Detail {
	desc := util.FirstOf(doc.Selection, descriptionChain...)
	if desc == "" {
		desc = NoDescription
	}

	return domain.Detail{
		Description:    util.Truncate(desc, b.cfg.MaxDescriptionChars),
		Pay:            util.ParsePay(util.FirstOf(doc.Selection, payChain...)),
		EmploymentType: util.ClassifyEmploymentType(desc),
		ValidThrough:   fetchedAt.Add(b.cfg.ValidFor).Format("2006-01-02"),
		ApplyURL:       util.Absolute(b.cfg.BaseURL, util.FirstOf(doc.Selection, applyChain...)),
	}
}
