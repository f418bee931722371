// Package export turns a finished run into its one-row CSV artifact.
package export

import (
	"fmt"
	"strings"
	"time"

	"jobhunt-harvester/internal/domain"
)

const DefaultCategory = "Jobs & Side Hustle (USA)"

type Meta struct {
	Query     string
	Category  string
	Published time.Time
}

// Row is a single CSV record with its header. Header and Values always have
// the same length.
type Row struct {
	Header []string
	Values []string
}

func (r *Row) add(k, v string) {
	r.Header = append(r.Header, k)
	r.Values = append(r.Values, v)
}

// Get returns the value for column k.
func (r Row) Get(k string) (string, bool) {
	for i, h := range r.Header {
		if h == k {
			return r.Values[i], true
		}
	}
	return "", false
}

var listingColumns = []string{
	"desc_full", "pay_min", "pay_max", "pay_unit", "type", "valid_through",
	"title", "company", "city", "state", "apply_url",
}

func listingValues(l domain.EnrichedListing) []string {
	return []string{
		l.Description, l.Pay.Min, l.Pay.Max, string(l.Pay.Unit), string(l.EmploymentType), l.ValidThrough,
		l.Title, l.Company, l.City, l.State, l.ApplyURL,
	}
}

// BuildRow lays out the page metadata columns followed by one job_N_ group
// per listing in run order. Zero listings still produce the metadata row.
func BuildRow(m Meta, listings []domain.EnrichedListing) Row {
	category := m.Category
	if category == "" {
		category = DefaultCategory
	}
	q := strings.TrimSpace(m.Query)

	var r Row
	r.add("slug", Slug(q))
	r.add("title", fmt.Sprintf("Top %d %s Jobs in USA (Hiring Now)", len(listings), q))
	r.add("meta_description", fmt.Sprintf("Latest %s jobs with pay, location, and direct apply links.", q))
	r.add("publish_date", m.Published.Format("2006-01-02"))
	r.add("categories", category)
	r.add("tags", q+", hiring now, USA jobs")
	r.add("feature_image_url", "")

	for i, l := range listings {
		prefix := fmt.Sprintf("job_%d_", i+1)
		for j, v := range listingValues(l) {
			r.add(prefix+listingColumns[j], v)
		}
	}
	return r
}

func Slug(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), "-") + "-jobs-usa-hiring-now"
}

// FileName expands {query} and {date} in pattern. The query is lowercased
// with runs of whitespace joined by '_'; path separators and ".." become '_'
// too, so the name always stays inside the output directory.
func FileName(pattern, query string, at time.Time) string {
	if pattern == "" {
		pattern = "{query}_jobs_{date}.csv"
	}
	return strings.NewReplacer("{query}", fileSafe(query), "{date}", at.Format("20060102")).Replace(pattern)
}

func fileSafe(query string) string {
	q := strings.Join(strings.Fields(strings.ToLower(query)), "_")
	q = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, q)
	q = strings.ReplaceAll(q, "..", "_")
	if q == "" || q == "." {
		return "_"
	}
	return q
}
