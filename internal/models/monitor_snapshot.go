package models

import "time"

// MonitorSnapshot is the rendered state of the peak log after a tick.
type MonitorSnapshot struct {
	Running   bool      `json:"running"`
	Available bool      `json:"available"` // false when the daemon could not be reached
	Status    string    `json:"status"`
	Peaks     []string  `json:"peaks"` // most recent first
	Display   string    `json:"display"`
	Watermark string    `json:"watermark"` // HH:MM:SS or empty
	UpdatedAt time.Time `json:"updated_at"`
	Error     string    `json:"error,omitempty"`
}
