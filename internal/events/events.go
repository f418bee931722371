package events

import (
	"encoding/json"
	"time"
)

const (
	TypePing         = "ping"
	TypeRunStarted   = "run_started"
	TypeListingAdded = "listing_added"
	TypeRunFinished  = "run_finished"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type RunStarted struct {
	RunID    string `json:"run_id"`
	Query    string `json:"query"`
	Location string `json:"location"`
}

type ListingAdded struct {
	RunID    string `json:"run_id"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	City     string `json:"city"`
	State    string `json:"state"`
	Failed   bool   `json:"detail_failed,omitempty"`
}

type RunFinished struct {
	RunID      string `json:"run_id"`
	StopReason string `json:"stop_reason"`
	Pages      int    `json:"pages"`
	Listings   int    `json:"listings"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
