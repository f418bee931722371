package domain

type EmploymentType string

const (
	FullTime          EmploymentType = "Full-time"
	PartTime          EmploymentType = "Part-time"
	Remote            EmploymentType = "Remote"
	EmploymentUnknown EmploymentType = "N/A" // only on sentinel records
)

type PayUnit string

const (
	PayHour PayUnit = "hour"
	PayYear PayUnit = "year"
)

// ListingSummary is what a search results card tells us about a posting.
type ListingSummary struct {
	Title       string
	Company     string
	RawLocation string
	DetailURL   string // absolute
}

type LocationParts struct {
	City  string
	State string
}

// PayRange holds decimal strings as they appeared in the snippet, minus
// currency symbols and thousands separators. Empty means unknown.
type PayRange struct {
	Min  string
	Max  string
	Unit PayUnit
}

// Detail is the part of a listing only the detail page can provide.
type Detail struct {
	Description    string
	Pay            PayRange
	EmploymentType EmploymentType
	ValidThrough   string // 2006-01-02, empty on sentinel
	ApplyURL       string
	Failed         bool
}

type EnrichedListing struct {
	ListingSummary
	LocationParts

	Description    string
	Pay            PayRange
	EmploymentType EmploymentType
	ValidThrough   string
	ApplyURL       string
	SourceID       string
	DetailFailed   bool
}

// NewEnrichedListing merges a card with its detail record. The apply URL
// falls back to the card's detail URL when the detail page had none.
func NewEnrichedListing(s ListingSummary, loc LocationParts, d Detail, sourceID string) EnrichedListing {
	apply := d.ApplyURL
	if apply == "" {
		apply = s.DetailURL
	}
	return EnrichedListing{
		ListingSummary: s,
		LocationParts:  loc,
		Description:    d.Description,
		Pay:            d.Pay,
		EmploymentType: d.EmploymentType,
		ValidThrough:   d.ValidThrough,
		ApplyURL:       apply,
		SourceID:       sourceID,
		DetailFailed:   d.Failed,
	}
}
