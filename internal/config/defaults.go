package config

import (
	"time"

	"jobhunt-harvester/internal/scrape/fetch"
)

const DefaultUserAgent = fetch.DefaultUserAgent

func Default() Config {
	return Config{
		Search: SearchConfig{
			Query:          "Receptionist",
			Location:       "United States",
			BaseURL:        "https://www.indeed.com",
			FreshnessDays:  1,
			ResultsPerPage: 10,
		},
		Limits: LimitsConfig{
			MaxListings:         40,
			MaxPages:            5,
			MaxDescriptionChars: 3000,
		},
		Pacing: PacingConfig{
			ListingMin:        Duration(3 * time.Second),
			ListingMax:        Duration(6 * time.Second),
			PageMin:           Duration(3 * time.Second),
			PageMax:           Duration(5 * time.Second),
			RequestsPerSecond: 1,
			Burst:             1,
		},
		HTTP: HTTPConfig{
			Timeout:   Duration(10 * time.Second),
			UserAgent: DefaultUserAgent,
		},
		Output: OutputConfig{
			Dir:        ".",
			CSVPattern: "{query}_jobs_{date}.csv",
			Category:   "Jobs & Side Hustle (USA)",
		},
		Store: StoreConfig{
			Path:      "harvest.db",
			Retention: Duration(90 * 24 * time.Hour),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:38471",
		},
	}
}
