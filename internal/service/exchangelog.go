package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"audio_bridge/internal/models"
	"audio_bridge/internal/repository"
)

type ExchangeLogService struct {
	exchangeRepo repository.ExchangeRepo
}

func NewExchangeLogService(exchangeRepo repository.ExchangeRepo) *ExchangeLogService {
	return &ExchangeLogService{exchangeRepo: exchangeRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errInvalidService   = errors.New("invalid service: must be normal or control")

	// ErrAuditDisabled is returned by List when no audit store is configured.
	ErrAuditDisabled = errors.New("exchange audit log is disabled")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates them.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	svc := strings.ToLower(strings.TrimSpace(f.Service))
	switch models.Service(svc) {
	case "", models.ServiceNormal, models.ServiceControl:
	default:
		return time.Time{}, time.Time{}, "", errInvalidService
	}
	return from, to, svc, nil
}

func (s *ExchangeLogService) List(ctx context.Context, f LogFilter) ([]models.Exchange, error) {
	if s.exchangeRepo == nil {
		return nil, ErrAuditDisabled
	}
	from, to, svc, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.exchangeRepo.List(ctx, from, to, svc)
}
