package daemon

import (
	"errors"
	"fmt"

	"audio_bridge/internal/models"
)

// Transport operations a TransportError can report.
const (
	OpConnect = "connect"
	OpWrite   = "write"
	OpRead    = "read"
)

// ConnectFailedMarker is the substring clients sniff for in a bridged
// response body to detect that the daemon could not be reached.
const ConnectFailedMarker = "socket_connect() failed"

// ErrUnavailable matches connect failures: the daemon could not be reached.
var ErrUnavailable = errors.New("daemon unavailable")

// TransportError reports a failed socket operation against the daemon.
type TransportError struct {
	Op       string
	Endpoint models.Endpoint
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("daemon %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes connect failures match ErrUnavailable.
func (e *TransportError) Is(target error) bool {
	return target == ErrUnavailable && e.Op == OpConnect
}

// Diagnostic renders the error as the plain-text line browsers expect in the
// response body. Connect failures carry ConnectFailedMarker.
func (e *TransportError) Diagnostic() string {
	switch e.Op {
	case OpConnect:
		return fmt.Sprintf("%s: (%s) %v\n", ConnectFailedMarker, e.Endpoint, e.Err)
	case OpWrite:
		return fmt.Sprintf("socket_write() failed: %v\n", e.Err)
	default:
		return fmt.Sprintf("socket_read() failed: %v\n", e.Err)
	}
}
