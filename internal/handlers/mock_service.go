package handlers

import (
	"context"
	"sync"
	"time"

	"audio_bridge/internal/models"
	"audio_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockRouter struct {
	resp     string
	err      error
	commands []string
}

func (m *mockRouter) Execute(ctx context.Context, command string) (string, error) {
	m.commands = append(m.commands, command)
	return m.resp, m.err
}

// mockPeakMonitor is shared with websocket reader goroutines.
type mockPeakMonitor struct {
	mu         sync.Mutex
	snap       models.MonitorSnapshot
	resetCalls int
	showCalls  int
}

func (m *mockPeakMonitor) Tick(ctx context.Context) (models.MonitorSnapshot, error) {
	return m.Snapshot(), nil
}

func (m *mockPeakMonitor) Snapshot() models.MonitorSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *mockPeakMonitor) ResetWatermark() models.MonitorSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCalls++
	m.snap.Watermark = "12:00:00"
	return m.snap
}

func (m *mockPeakMonitor) ShowAll() models.MonitorSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showCalls++
	m.snap.Watermark = ""
	return m.snap
}

func (m *mockPeakMonitor) Run(ctx context.Context, interval time.Duration) {}

func (m *mockPeakMonitor) resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resetCalls
}

type mockExchangeLog struct {
	resp        []models.Exchange
	err         error
	lastFrom    time.Time
	lastTo      time.Time
	lastService string
	calls       int
}

func (m *mockExchangeLog) List(ctx context.Context, f service.LogFilter) ([]models.Exchange, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastService = f.Service
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}
