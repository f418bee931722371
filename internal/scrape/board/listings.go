package board

import (
	"iter"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"jobhunt-harvester/internal/domain"
	"jobhunt-harvester/internal/scrape/util"
)

const cardAncestors = "div.job_seen_beacon, div.jobsearch-SerpJobCard, div.result, li"

// Card containers, most structural first.
var cardStrategies = []util.NodeStrategy{
	cardsByKey,
	util.Nodes("div.job_seen_beacon"),
	util.Nodes("div.jobsearch-SerpJobCard"),
	util.Nodes("div.result"),
}

var (
	titleChain = []util.Strategy{
		util.Text("h2.jobTitle"),
		util.Text("a.jcs-JobTitle"),
		util.Text("h2 a"),
		util.Text("h2"),
	}
	companyChain = []util.Strategy{
		util.Text("[data-testid='company-name']"),
		util.Text("span.companyName"),
		util.Text("span.company"),
	}
	locationChain = []util.Strategy{
		util.Text("[data-testid='text-location']"),
		util.Text("div.companyLocation"),
		util.Text(".location"),
	}
	keyChain = []util.Strategy{
		util.Attr("", "data-jk"),
		util.Attr("[data-jk]", "data-jk"),
	}
	hrefChain = []util.Strategy{
		util.Attr("h2 a[href]", "href"),
		util.Attr("a[href]", "href"),
	}
)

// cardsByKey finds every node carrying a listing key and climbs to its
// card. Several keyed nodes in one card collapse to a single card.
func cardsByKey(root *goquery.Selection) *goquery.Selection {
	var nodes []*html.Node
	root.Find("[data-jk]").Each(func(_ int, s *goquery.Selection) {
		card := s.Closest(cardAncestors)
		if card.Length() == 0 {
			card = s
		}
		nodes = append(nodes, card.Nodes[0])
	})
	return root.Slice(0, 0).AddNodes(nodes...)
}

// ExtractListings yields one summary per usable card in document order.
// Unusable cards are skipped and logged; they never stop the page.
func (b *Board) ExtractListings(doc *goquery.Document) iter.Seq[domain.ListingSummary] {
	return func(yield func(domain.ListingSummary) bool) {
		cards := util.FirstNodes(doc.Selection, cardStrategies...)
		for i := range cards.Nodes {
			s, reason := b.summarize(cards.Eq(i))
			if reason != "" {
				zap.L().Debug("board: candidate skipped",
					zap.Int("index", i),
					zap.String("reason", reason),
					zap.String("title", s.Title),
				)
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

func (b *Board) summarize(card *goquery.Selection) (domain.ListingSummary, string) {
	var s domain.ListingSummary

	s.Title = util.FirstOf(card, titleChain...)
	if s.Title == "" {
		return s, "no title"
	}
	if util.ContainsFold(s.Title, "sponsored") {
		return s, "sponsored"
	}

	s.Company = util.FirstOf(card, companyChain...)
	if s.Company == "" {
		s.Company = "N/A"
	}
	s.RawLocation = util.FirstOf(card, locationChain...)

	if key := util.FirstOf(card, keyChain...); key != "" {
		s.DetailURL = util.ViewJobURL(b.cfg.BaseURL, key)
	} else {
		s.DetailURL = util.ResolveHref(b.cfg.BaseURL, util.FirstOf(card, hrefChain...))
	}
	if s.DetailURL == "" {
		return s, "no detail url"
	}
	return s, ""
}
