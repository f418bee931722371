package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

const envPrefix = "HARVEST_"

type envSetter func(c *Config, v string) error

func setString(f func(*Config) *string) envSetter {
	return func(c *Config, v string) error { *f(c) = v; return nil }
}

func setInt(f func(*Config) *int) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*f(c) = n
		return nil
	}
}

func setDuration(f func(*Config) *Duration) envSetter {
	return func(c *Config, v string) error { return f(c).parse(strings.TrimSpace(v)) }
}

// envOverrides maps HARVEST_<SECTION>_<KEY> to its field.
var envOverrides = map[string]envSetter{
	"SEARCH_QUERY":          setString(func(c *Config) *string { return &c.Search.Query }),
	"SEARCH_LOCATION":       setString(func(c *Config) *string { return &c.Search.Location }),
	"SEARCH_BASE_URL":       setString(func(c *Config) *string { return &c.Search.BaseURL }),
	"SEARCH_FRESHNESS_DAYS": setInt(func(c *Config) *int { return &c.Search.FreshnessDays }),
	"LIMITS_MAX_LISTINGS":   setInt(func(c *Config) *int { return &c.Limits.MaxListings }),
	"LIMITS_MAX_PAGES":      setInt(func(c *Config) *int { return &c.Limits.MaxPages }),
	"PACING_LISTING_MIN":    setDuration(func(c *Config) *Duration { return &c.Pacing.ListingMin }),
	"PACING_LISTING_MAX":    setDuration(func(c *Config) *Duration { return &c.Pacing.ListingMax }),
	"PACING_PAGE_MIN":       setDuration(func(c *Config) *Duration { return &c.Pacing.PageMin }),
	"PACING_PAGE_MAX":       setDuration(func(c *Config) *Duration { return &c.Pacing.PageMax }),
	"HTTP_TIMEOUT":          setDuration(func(c *Config) *Duration { return &c.HTTP.Timeout }),
	"HTTP_USER_AGENT":       setString(func(c *Config) *string { return &c.HTTP.UserAgent }),
	"HTTP_RETRIES":          setInt(func(c *Config) *int { return &c.HTTP.Retries }),
	"OUTPUT_DIR":            setString(func(c *Config) *string { return &c.Output.Dir }),
	"STORE_PATH":            setString(func(c *Config) *string { return &c.Store.Path }),
	"LOG_LEVEL":             setString(func(c *Config) *string { return &c.Log.Level }),
	"LOG_FORMAT":            setString(func(c *Config) *string { return &c.Log.Format }),
	"SERVE_ADDR":            setString(func(c *Config) *string { return &c.Serve.Addr }),
	"SERVE_INTERVAL":        setDuration(func(c *Config) *Duration { return &c.Serve.Interval }),
}

func applyEnv(c *Config) error {
	for key, set := range envOverrides {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || v == "" {
			continue
		}
		if err := set(c, v); err != nil {
			return eris.Wrapf(err, "config: %s%s", envPrefix, key)
		}
	}
	return nil
}
