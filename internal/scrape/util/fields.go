package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"jobhunt-harvester/internal/domain"
)

var payToken = regexp.MustCompile(`\$\s?(\d[\d,]*(?:\.\d+)?)`)

// ParsePay pulls up to two dollar amounts out of a compensation snippet.
// Text without a "$" yields an empty hourly range.
func ParsePay(text string) domain.PayRange {
	out := domain.PayRange{Unit: domain.PayHour}
	if text == "" || !strings.Contains(text, "$") {
		return out
	}

	matches := payToken.FindAllStringSubmatch(text, 2)
	if len(matches) > 0 {
		out.Min = amount(matches[0][1])
	}
	if len(matches) > 1 {
		out.Max = amount(matches[1][1])
	}

	// hourly markers win over yearly ones: "$X/hr" vs "$X - $Y a year"
	low := strings.ToLower(text)
	switch {
	case strings.Contains(low, "hour") || strings.Contains(low, "hr"):
		out.Unit = domain.PayHour
	case strings.Contains(low, "year"):
		out.Unit = domain.PayYear
	}
	return out
}

func amount(tok string) string {
	return strings.TrimRight(strings.ReplaceAll(tok, ",", ""), ".")
}

// ClassifyEmploymentType assigns exactly one label from description text.
func ClassifyEmploymentType(desc string) domain.EmploymentType {
	low := strings.ToLower(desc)
	switch {
	case strings.Contains(low, "part") && strings.Contains(low, "time"):
		return domain.PartTime
	case strings.Contains(low, "remote") || strings.Contains(low, "work from home"):
		return domain.Remote
	default:
		return domain.FullTime
	}
}

// SplitLocation splits "City, ST 12345" into city and state. Only the first
// token after the comma is kept as the state. The split happens before any
// trimming so "Austin, " still yields city "Austin".
func SplitLocation(raw string) domain.LocationParts {
	city, rest, ok := strings.Cut(norm.NFKC.String(raw), ", ")
	if !ok {
		return domain.LocationParts{City: CleanText(raw)}
	}
	state := ""
	if f := strings.Fields(rest); len(f) > 0 {
		state = f[0]
	}
	return domain.LocationParts{City: CleanText(city), State: state}
}
