package util

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// ViewJobURL builds the canonical detail URL for a listing key.
func ViewJobURL(base, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/viewjob?jk=" + url.QueryEscape(key)
}

// ResolveHref turns a card href into an absolute URL on base. Everything
// after the first '&' is tracking noise and is dropped.
func ResolveHref(base, href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexByte(href, '&'); i >= 0 {
		href = href[:i]
	}
	return Absolute(base, href)
}

// Absolute resolves href against base. Fragments, javascript: links and
// non-http schemes resolve to "".
func Absolute(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}

	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := b.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

// SourceID is a stable identity for a detail URL: the listing key when the
// URL carries one, else a hash of the URL.
func SourceID(detailURL string) string {
	if u, err := url.Parse(detailURL); err == nil {
		if jk := u.Query().Get("jk"); jk != "" {
			return "jk:" + jk
		}
	}
	return "url:" + HashString(detailURL)
}

func HashString(s string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(s)))
	return hex.EncodeToString(h[:])[:16]
}
