// Package config loads the harvester settings: defaults, then config.yml,
// then HARVEST_* environment overrides (a .env file is read first if present).
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Search SearchConfig `yaml:"search" json:"search"`
	Limits LimitsConfig `yaml:"limits" json:"limits"`
	Pacing PacingConfig `yaml:"pacing" json:"pacing"`
	HTTP   HTTPConfig   `yaml:"http" json:"http"`
	Output OutputConfig `yaml:"output" json:"output"`
	Store  StoreConfig  `yaml:"store" json:"store"`
	Log    LogConfig    `yaml:"log" json:"log"`
	Serve  ServeConfig  `yaml:"serve" json:"serve"`
}

type SearchConfig struct {
	Query          string `yaml:"query" json:"query"`
	Location       string `yaml:"location" json:"location"`
	BaseURL        string `yaml:"base_url" json:"base_url"`
	FreshnessDays  int    `yaml:"freshness_days" json:"freshness_days"`
	ResultsPerPage int    `yaml:"results_per_page" json:"results_per_page"`
}

type LimitsConfig struct {
	MaxListings         int `yaml:"max_listings" json:"max_listings"`
	MaxPages            int `yaml:"max_pages" json:"max_pages"` // 0 = no ceiling
	MaxDescriptionChars int `yaml:"max_description_chars" json:"max_description_chars"`
}

// PacingConfig holds the politeness delays. The random windows apply
// between listings and between pages; the rate limit is a hard floor per
// host underneath them.
type PacingConfig struct {
	ListingMin        Duration `yaml:"listing_min" json:"listing_min"`
	ListingMax        Duration `yaml:"listing_max" json:"listing_max"`
	PageMin           Duration `yaml:"page_min" json:"page_min"`
	PageMax           Duration `yaml:"page_max" json:"page_max"`
	RequestsPerSecond float64  `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int      `yaml:"burst" json:"burst"`
}

type HTTPConfig struct {
	Timeout   Duration `yaml:"timeout" json:"timeout"`
	UserAgent string   `yaml:"user_agent" json:"user_agent"`
	Retries   int      `yaml:"retries" json:"retries"`
}

type OutputConfig struct {
	Dir        string `yaml:"dir" json:"dir"`
	CSVPattern string `yaml:"csv_pattern" json:"csv_pattern"`
	Category   string `yaml:"category" json:"category"`
}

type StoreConfig struct {
	Path      string   `yaml:"path" json:"path"`
	Retention Duration `yaml:"retention" json:"retention"` // 0 keeps everything
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type ServeConfig struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Interval Duration `yaml:"interval" json:"interval"` // 0 = manual runs only
	// AllowedOrigins are the browser origins that may call the API, e.g.
	// "http://localhost:5173". Empty means no cross-origin callers.
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// Load builds the effective config and validates it. A missing file at
// path is not an error; the defaults stand in for it.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	out, v := NormalizeAndValidate(cfg)
	if !v.OK() {
		return Config{}, v.Err()
	}
	return out, nil
}

// Read is Load without validation.
func Read(path string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, eris.Wrapf(err, "config: read %s", path)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, eris.Wrapf(err, "config: parse %s", path)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadDotEnv reads KEY=VALUE pairs into the process environment without
// overriding variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return eris.Wrapf(godotenv.Load(path), "config: load %s", path)
}

func (c Config) String() string {
	b, _ := yaml.Marshal(c)
	return strings.TrimSpace(string(b))
}
