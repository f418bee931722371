package domain

import "time"

type Run struct {
	ID         string
	Query      string
	Location   string
	StartedAt  time.Time
	FinishedAt time.Time
	StopReason string
	Pages      int
	Faults     int // detail pages that came back as sentinels
	OutputPath string
	Listings   []EnrichedListing
}
