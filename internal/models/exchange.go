package models

import "time"

// Exchange is one audited command round trip to the daemon.
type Exchange struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Command    string    `json:"command"`
	Service    Service   `json:"service"` // normal | control
	Address    string    `json:"address"`
	Port       int       `json:"port"`
	Bytes      int       `json:"bytes"` // response size
	Failed     bool      `json:"failed"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}
