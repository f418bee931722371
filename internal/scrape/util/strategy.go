package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy extracts one field from a node. An empty result means "try the
// next one".
type Strategy func(*goquery.Selection) string

// NodeStrategy selects a set of nodes under a root.
type NodeStrategy func(*goquery.Selection) *goquery.Selection

// Text returns the cleaned text of the first node matching selector.
func Text(selector string) Strategy {
	return func(s *goquery.Selection) string {
		return CleanText(s.Find(selector).First().Text())
	}
}

// SpacedText is Text for block content: child elements are joined with a
// space so paragraphs don't run together.
func SpacedText(selector string) Strategy {
	return func(s *goquery.Selection) string {
		node := s.Find(selector).First()
		if node.Length() == 0 {
			return ""
		}
		var parts []string
		node.Contents().Each(func(_ int, c *goquery.Selection) {
			parts = append(parts, c.Text())
		})
		return CleanText(strings.Join(parts, " "))
	}
}

// Attr returns the trimmed attribute of the first node matching selector.
// An empty selector reads the attribute from s itself.
func Attr(selector, attr string) Strategy {
	return func(s *goquery.Selection) string {
		node := s
		if selector != "" {
			node = s.Find(selector)
		}
		v, _ := node.First().Attr(attr)
		return strings.TrimSpace(v)
	}
}

// FirstOf applies chain in order and returns the first non-empty result.
func FirstOf(s *goquery.Selection, chain ...Strategy) string {
	for _, st := range chain {
		if v := st(s); v != "" {
			return v
		}
	}
	return ""
}

// Nodes selects every node matching selector.
func Nodes(selector string) NodeStrategy {
	return func(s *goquery.Selection) *goquery.Selection {
		return s.Find(selector)
	}
}

// FirstNodes applies chain in order and returns the first non-empty set.
func FirstNodes(s *goquery.Selection, chain ...NodeStrategy) *goquery.Selection {
	for _, st := range chain {
		if set := st(s); set != nil && set.Length() > 0 {
			return set
		}
	}
	return s.Slice(0, 0)
}
