package fetch

import (
	"bytes"
	"net/http"
)

var blockMarkers = [][]byte{
	[]byte("cf-browser-verification"),
	[]byte("checking your browser"),
	[]byte("<title>just a moment"),
	[]byte("<title>security check"),
	[]byte("hcaptcha"),
	[]byte("g-recaptcha"),
}

// DetectBlock reports whether a 2xx response is really an anti-bot
// interstitial. The marker that matched is returned for logging.
func DetectBlock(h http.Header, body []byte) (bool, string) {
	if h.Get("cf-mitigated") == "challenge" {
		return true, "cf-mitigated"
	}
	lower := bytes.ToLower(body)
	for _, m := range blockMarkers {
		if bytes.Contains(lower, m) {
			return true, string(m)
		}
	}
	return false, ""
}
