package service

import (
	"context"
	"strings"
	"time"

	"audio_bridge/internal/logger"
	"audio_bridge/internal/models"
	"audio_bridge/internal/repository"
)

// Command prefixes served by the daemon's control port.
var controlPrefixes = []string{"restart_", "amp_"}

// Exchanger performs one request/response round trip with the daemon.
type Exchanger interface {
	Exchange(ctx context.Context, ep models.Endpoint, command string) ([]byte, error)
}

// Classify maps a command to its service by literal prefix only.
func Classify(command string) models.Service {
	for _, p := range controlPrefixes {
		if strings.HasPrefix(command, p) {
			return models.ServiceControl
		}
	}
	return models.ServiceNormal
}

type RouterService struct {
	address   string
	basePort  int
	exchanger Exchanger
	auditRepo repository.ExchangeRepo // nil disables auditing
	log       *logger.Logger
	now       func() time.Time
}

func NewRouterService(daemon DaemonParams, exchanger Exchanger, auditRepo repository.ExchangeRepo) *RouterService {
	return &RouterService{
		address:   daemon.Address,
		basePort:  daemon.BasePort,
		exchanger: exchanger,
		auditRepo: auditRepo,
		now:       time.Now,
	}
}

// Endpoint resolves the daemon address for a service.
func (s *RouterService) Endpoint(svc models.Service) models.Endpoint {
	port := s.basePort
	if svc == models.ServiceControl {
		port++
	}
	return models.Endpoint{Address: s.address, Port: port}
}

// Route resolves the endpoint a command is delivered to.
func (s *RouterService) Route(command string) models.Endpoint {
	return s.Endpoint(Classify(command))
}

// Execute sends command to the daemon over a fresh connection and returns
// the full response. Transport failures come back as *daemon.TransportError.
func (s *RouterService) Execute(ctx context.Context, command string) (string, error) {
	svc := Classify(command)
	ep := s.Route(command)

	started := s.now()
	ans, err := s.exchanger.Exchange(ctx, ep, command)
	s.audit(ctx, command, svc, ep, started, len(ans), err)
	if err != nil {
		return "", err
	}
	return string(ans), nil
}

// audit appends the exchange to the audit log, best-effort.
func (s *RouterService) audit(ctx context.Context, command string, svc models.Service, ep models.Endpoint, started time.Time, n int, err error) {
	if s.auditRepo == nil {
		return
	}
	ex := models.Exchange{
		OccurredAt: started.UTC(),
		Command:    command,
		Service:    svc,
		Address:    ep.Address,
		Port:       ep.Port,
		Bytes:      n,
		DurationMs: s.now().Sub(started).Milliseconds(),
	}
	if err != nil {
		ex.Failed = true
		ex.Error = err.Error()
	}
	if aerr := s.auditRepo.Append(context.WithoutCancel(ctx), ex); aerr != nil && s.log != nil {
		s.log.Warnw("exchange_audit_failed", "err", aerr, "command", command)
	}
}
