package service

import (
	"context"
	"time"

	"audio_bridge/internal/logger"
	"audio_bridge/internal/models"
	"audio_bridge/internal/repository"
)

// Router delivers a command to the daemon port selected by its prefix.
type Router interface {
	Execute(ctx context.Context, command string) (string, error)
}

// PeakMonitor exposes the convolver peak log view and its watermark.
type PeakMonitor interface {
	Tick(ctx context.Context) (models.MonitorSnapshot, error)
	Snapshot() models.MonitorSnapshot
	ResetWatermark() models.MonitorSnapshot
	ShowAll() models.MonitorSnapshot
	// Run polls until ctx is canceled. Stop via context cancellation in main().
	Run(ctx context.Context, interval time.Duration)
}

// ExchangeLog exposes the audit trail of bridged commands.
type ExchangeLog interface {
	List(ctx context.Context, f LogFilter) ([]models.Exchange, error)
}

// Service aggregates all sub-services.
type Service struct {
	Router
	PeakMonitor
	ExchangeLog
}

// NewService wires the daemon transport and repositories into concrete
// services. repos may be nil, which disables the audit log. The peak monitor
// polls through its own router that never audits.
func NewService(repos *repository.Repository, daemon DaemonParams, exchanger Exchanger, log *logger.Logger) *Service {
	var auditRepo repository.ExchangeRepo
	if repos != nil {
		auditRepo = repos.ExchangeRepo
	}
	router := NewRouterService(daemon, exchanger, auditRepo)
	router.log = log
	poller := NewRouterService(daemon, exchanger, nil)
	return &Service{
		Router:      router,
		PeakMonitor: NewPeakMonitorService(poller, log),
		ExchangeLog: NewExchangeLogService(auditRepo),
	}
}
