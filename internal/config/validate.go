package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds all errors into one, or nil.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return errors.New("config validation failed:\n- " + strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate trims free text, fills empty optional fields and
// checks every rule. All problems are reported, not just the first.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.Search.Query = strings.Join(strings.Fields(out.Search.Query), " ")
	out.Search.Location = strings.TrimSpace(out.Search.Location)
	out.Search.BaseURL = strings.TrimRight(strings.TrimSpace(out.Search.BaseURL), "/")
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))
	out.Log.Format = strings.ToLower(strings.TrimSpace(out.Log.Format))
	if out.HTTP.UserAgent == "" {
		out.HTTP.UserAgent = DefaultUserAgent
	}
	if out.Output.Dir == "" {
		out.Output.Dir = "."
	}

	// search
	if out.Search.Query == "" {
		res.addErr("search.query is required")
	}
	if u, err := url.Parse(out.Search.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		res.addErr("search.base_url must be an absolute http(s) URL, got %q", out.Search.BaseURL)
	}
	if out.Search.FreshnessDays < 0 {
		res.addErr("search.freshness_days must be >= 0")
	}
	if out.Search.ResultsPerPage <= 0 {
		res.addErr("search.results_per_page must be > 0")
	}

	// limits
	if out.Limits.MaxListings <= 0 {
		res.addErr("limits.max_listings must be > 0")
	}
	if out.Limits.MaxPages < 0 {
		res.addErr("limits.max_pages must be >= 0")
	} else if out.Limits.MaxPages == 0 {
		res.addWarn("limits.max_pages is 0; runs stop only on quota or the last page.")
	}
	if out.Limits.MaxDescriptionChars <= 0 {
		res.addErr("limits.max_description_chars must be > 0")
	}

	// pacing
	checkWindow := func(name string, lo, hi Duration) {
		if lo < 0 || hi < 0 {
			res.addErr("pacing.%s delays must be >= 0", name)
		}
		if hi < lo {
			res.addErr("pacing.%s_max (%s) must be >= pacing.%s_min (%s)", name, hi, name, lo)
		}
	}
	checkWindow("listing", out.Pacing.ListingMin, out.Pacing.ListingMax)
	checkWindow("page", out.Pacing.PageMin, out.Pacing.PageMax)
	if out.Pacing.ListingMin.Std() < time.Second {
		res.addWarn("pacing.listing_min is %s; short delays get runs blocked.", out.Pacing.ListingMin)
	}
	if out.Pacing.RequestsPerSecond < 0 {
		res.addErr("pacing.requests_per_second must be >= 0")
	}
	if out.Pacing.RequestsPerSecond > 0 && out.Pacing.Burst < 1 {
		res.addErr("pacing.burst must be >= 1 when requests_per_second is set")
	}

	// http
	if out.HTTP.Timeout <= 0 {
		res.addErr("http.timeout must be > 0")
	}
	if out.HTTP.Retries < 0 || out.HTTP.Retries > 5 {
		res.addErr("http.retries must be 0..5")
	}

	// output
	if out.Output.CSVPattern == "" {
		res.addErr("output.csv_pattern is required")
	} else {
		if !strings.Contains(out.Output.CSVPattern, "{date}") {
			res.addWarn("output.csv_pattern has no {date}; each run overwrites the last file.")
		}
		if strings.ContainsAny(out.Output.CSVPattern, `/\`) {
			res.addErr("output.csv_pattern must be a file name; use output.dir for the directory")
		}
	}

	// store
	if strings.TrimSpace(out.Store.Path) == "" {
		res.addErr("store.path is required")
	}
	if out.Store.Retention < 0 {
		res.addErr("store.retention must be >= 0")
	}

	// log
	if _, err := zapcore.ParseLevel(out.Log.Level); err != nil {
		res.addErr("log.level %q is not a zap level", out.Log.Level)
	}
	if out.Log.Format != "json" && out.Log.Format != "console" {
		res.addErr("log.format must be json or console")
	}

	// serve
	if strings.TrimSpace(out.Serve.Addr) == "" {
		res.addErr("serve.addr is required")
	}
	if out.Serve.Interval < 0 {
		res.addErr("serve.interval must be >= 0")
	} else if iv := out.Serve.Interval.Std(); iv > 0 && iv < 10*time.Minute {
		res.addWarn("serve.interval is %s; frequent runs get blocked.", iv)
	}
	var origins []string
	for _, o := range out.Serve.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		u, err := url.Parse(o)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.Path != "" || u.RawQuery != "" {
			res.addErr("serve.allowed_origins: %q is not a scheme://host[:port] origin", o)
			continue
		}
		origins = append(origins, o)
	}
	out.Serve.AllowedOrigins = origins

	return out, res
}
