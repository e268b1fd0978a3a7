package service

import "time"

// DaemonParams locates the daemon: control commands go to BasePort+1.
type DaemonParams struct {
	Address  string
	BasePort int
}

// LogFilter supports audit history filtering by time range and service.
type LogFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Service string    // "", "normal", "control"
}
