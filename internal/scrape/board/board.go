// Package board reads one job board: search result pages into listing
// summaries, and listing detail pages into enrichment records.
package board

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"jobhunt-harvester/internal/scrape/fetch"
)

type Config struct {
	BaseURL        string
	Query          string
	Location       string
	FreshnessDays  int // 0 disables the filter
	ResultsPerPage int

	MaxDescriptionChars int
	ValidFor            time.Duration
}

// Getter is the transport the board needs. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL string, params url.Values) (fetch.Response, error)
}

type Board struct {
	cfg Config
	g   Getter
	now func() time.Time
}

func New(cfg Config, g Getter) *Board {
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = 10
	}
	if cfg.MaxDescriptionChars <= 0 {
		cfg.MaxDescriptionChars = 3000
	}
	if cfg.ValidFor <= 0 {
		cfg.ValidFor = 30 * 24 * time.Hour
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Board{cfg: cfg, g: g, now: time.Now}
}

func (b *Board) ResultsPerPage() int { return b.cfg.ResultsPerPage }

// SearchParams builds the query for a zero-based page: newest first,
// restricted to the freshness window.
func (b *Board) SearchParams(page int) url.Values {
	v := url.Values{}
	v.Set("q", b.cfg.Query)
	v.Set("l", b.cfg.Location)
	if b.cfg.FreshnessDays > 0 {
		v.Set("fromage", strconv.Itoa(b.cfg.FreshnessDays))
	}
	v.Set("start", strconv.Itoa(page*b.cfg.ResultsPerPage))
	v.Set("sort", "date")
	return v
}

// SearchPage fetches and parses one results page. Transport failures come
// back as *fetch.Fault.
func (b *Board) SearchPage(ctx context.Context, page int) (*goquery.Document, error) {
	resp, err := b.g.Get(ctx, b.cfg.BaseURL+"/jobs", b.SearchParams(page))
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, eris.Wrap(err, "board: parse search page")
	}
	return doc, nil
}
