package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"audio_bridge/internal/daemon"
	"audio_bridge/internal/logger"
	"audio_bridge/internal/models"
)

// Daemon queries used by the peak monitor.
const (
	CmdPeakMonitorRunning = "aux peak_monitor_running"
	CmdTodayPeaks         = "aux get_bf_today_peaks"
)

const (
	StatusRunning    = "Convolver peaks monitor is running ..."
	StatusNotRunning = "(convolver peaks monitor is NOT running)"

	// WatermarkLayout is the fixed-width HH:MM:SS prefix of every peak record.
	WatermarkLayout = "15:04:05"
	timestampWidth  = len(WatermarkLayout)
)

// ErrBadResponse wraps daemon replies that are not the expected JSON shape.
var ErrBadResponse = errors.New("unexpected daemon response")

// Commander sends one command and returns the full reply.
type Commander interface {
	Execute(ctx context.Context, command string) (string, error)
}

// PeakMonitorService polls the daemon's convolver peak log and keeps the
// rendered view. Records at or before the watermark are hidden.
type PeakMonitorService struct {
	commander Commander
	log       *logger.Logger
	now       func() time.Time

	mu          sync.Mutex
	watermark   string
	lastRecords []string // as fetched, oldest first
	snapshot    models.MonitorSnapshot
}

func NewPeakMonitorService(commander Commander, log *logger.Logger) *PeakMonitorService {
	return &PeakMonitorService{
		commander: commander,
		log:       log,
		now:       time.Now,
		snapshot: models.MonitorSnapshot{
			Available: true,
			Status:    StatusNotRunning,
			Peaks:     []string{},
		},
	}
}

// Run ticks at the given interval until ctx is canceled. Each tick completes
// its daemon round trips before the next one can start.
func (s *PeakMonitorService) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Tick(ctx); err != nil && s.log != nil && ctx.Err() == nil {
				s.log.Warnw("peak_tick_failed", "err", err)
			}
		}
	}
}

// Tick asks whether the peak monitor runs and, if so, fetches and renders
// today's peaks.
//
// When the daemon is unreachable the not-running view is rendered with
// Available=false and the error is returned alongside. A reply that does not
// parse leaves the previous view untouched.
func (s *PeakMonitorService) Tick(ctx context.Context) (models.MonitorSnapshot, error) {
	var running bool
	if err := s.query(ctx, CmdPeakMonitorRunning, &running); err != nil {
		return s.fail(err)
	}
	if !running {
		return s.render(false, nil), nil
	}

	var records []string
	if err := s.query(ctx, CmdTodayPeaks, &records); err != nil {
		return s.fail(err)
	}
	return s.render(true, records), nil
}

func (s *PeakMonitorService) query(ctx context.Context, command string, out any) error {
	ans, err := s.commander.Execute(ctx, command)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(ans), out); err != nil {
		return fmt.Errorf("%w to %q: %v", ErrBadResponse, command, err)
	}
	return nil
}

func (s *PeakMonitorService) fail(err error) (models.MonitorSnapshot, error) {
	if errors.Is(err, daemon.ErrUnavailable) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.lastRecords = nil
		s.snapshot = s.buildLocked(false, false, nil)
		s.snapshot.Error = err.Error()
		return s.snapshot, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Error = err.Error()
	return s.snapshot, err
}

func (s *PeakMonitorService) render(running bool, records []string) models.MonitorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRecords = records
	s.snapshot = s.buildLocked(running, true, records)
	return s.snapshot
}

// buildLocked renders records against the current watermark. s.mu must be held.
func (s *PeakMonitorService) buildLocked(running, available bool, records []string) models.MonitorSnapshot {
	status := StatusNotRunning
	if running {
		status = StatusRunning
	}
	peaks, display := RenderPeaks(FilterSince(records, s.watermark))
	return models.MonitorSnapshot{
		Running:   running,
		Available: available,
		Status:    status,
		Peaks:     peaks,
		Display:   display,
		Watermark: s.watermark,
		UpdatedAt: s.now().UTC(),
	}
}

// Snapshot returns the latest rendered view.
func (s *PeakMonitorService) Snapshot() models.MonitorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot
	snap.Peaks = make([]string, len(s.snapshot.Peaks))
	copy(snap.Peaks, s.snapshot.Peaks)
	return snap
}

// ResetWatermark hides every record stamped at or before the current local
// wall-clock second. The last fetched log is re-rendered right away; the
// daemon's log itself is left alone.
func (s *PeakMonitorService) ResetWatermark() models.MonitorSnapshot {
	return s.setWatermark(s.now().Format(WatermarkLayout))
}

// ShowAll clears the watermark so the whole log is displayed again.
func (s *PeakMonitorService) ShowAll() models.MonitorSnapshot {
	return s.setWatermark("")
}

func (s *PeakMonitorService) setWatermark(w string) models.MonitorSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watermark = w
	prev := s.snapshot
	s.snapshot = s.buildLocked(prev.Running, prev.Available, s.lastRecords)
	s.snapshot.Error = prev.Error
	return s.snapshot
}

// FilterSince keeps the records whose timestamp prefix sorts after watermark.
// An empty watermark keeps everything. Comparison is plain string order,
// which is time order for the fixed-width zero-padded HH:MM:SS prefix.
func FilterSince(records []string, watermark string) []string {
	if watermark == "" {
		return records
	}
	out := make([]string, 0, len(records))
	for _, r := range records {
		if timestampOf(r) > watermark {
			out = append(out, r)
		}
	}
	return out
}

// RenderPeaks orders records most recent first and joins them into the
// display text, one record per line.
func RenderPeaks(records []string) ([]string, string) {
	ordered := make([]string, len(records))
	for i, r := range records {
		ordered[len(records)-1-i] = r
	}
	var b strings.Builder
	for _, r := range ordered {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	return ordered, b.String()
}

func timestampOf(record string) string {
	if len(record) < timestampWidth {
		return record
	}
	return record[:timestampWidth]
}
