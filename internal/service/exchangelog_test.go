package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"audio_bridge/internal/models"
	"audio_bridge/internal/repository"
)

// fakeExchangeRepo captures List arguments.
type fakeExchangeRepo struct {
	gotFrom    time.Time
	gotTo      time.Time
	gotService string

	exchanges []models.Exchange
	err       error
	calls     int
}

func (f *fakeExchangeRepo) Append(ctx context.Context, e models.Exchange) error { return nil }

func (f *fakeExchangeRepo) List(ctx context.Context, from, to time.Time, svc string) ([]models.Exchange, error) {
	f.calls++
	f.gotFrom, f.gotTo, f.gotService = from, to, svc
	return f.exchanges, f.err
}

func TestExchangeLog_NormalizesFilter(t *testing.T) {
	t.Parallel()

	repo := &fakeExchangeRepo{exchanges: []models.Exchange{{ID: "a"}}}
	s := NewExchangeLogService(repo)

	loc := time.FixedZone("X", -3*3600)
	from := time.Date(2025, 1, 2, 3, 0, 0, 0, loc)
	to := time.Date(2025, 1, 2, 4, 0, 0, 0, loc)

	got, err := s.List(context.Background(), LogFilter{From: from, To: to, Service: " Control "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if repo.gotService != "control" {
		t.Errorf("service = %q, want control", repo.gotService)
	}
	if repo.gotFrom.Location() != time.UTC || !repo.gotFrom.Equal(from) {
		t.Errorf("from not normalized to UTC: %v", repo.gotFrom)
	}
	if repo.gotTo.Location() != time.UTC {
		t.Errorf("to not normalized to UTC: %v", repo.gotTo)
	}
}

func TestExchangeLog_Validation(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cases := []struct {
		name string
		f    LogFilter
		want error
	}{
		{"inverted_range", LogFilter{From: now, To: now.Add(-time.Hour)}, errInvalidTimeRange},
		{"unknown_service", LogFilter{Service: "preamp"}, errInvalidService},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeExchangeRepo{}
			_, err := NewExchangeLogService(repo).List(context.Background(), tc.f)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if repo.calls != 0 {
				t.Fatalf("repo must not be queried on invalid filter")
			}
		})
	}
}

func TestExchangeLog_PropagatesRepoError(t *testing.T) {
	t.Parallel()

	repo := &fakeExchangeRepo{err: errors.New("db down")}
	if _, err := NewExchangeLogService(repo).List(context.Background(), LogFilter{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestExchangeLog_Disabled(t *testing.T) {
	t.Parallel()

	if _, err := NewExchangeLogService(nil).List(context.Background(), LogFilter{}); !errors.Is(err, ErrAuditDisabled) {
		t.Fatalf("got %v, want ErrAuditDisabled", err)
	}
}

func TestNewService_WiresRouterIntoMonitor(t *testing.T) {
	t.Parallel()

	ex := &stubExchanger{resp: []byte("false")}
	s := NewService(nil, testDaemon, ex, nil)

	snap, err := s.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if snap.Running {
		t.Fatalf("expected not running")
	}
	if len(ex.calls) != 1 || ex.calls[0].command != CmdPeakMonitorRunning || ex.calls[0].ep.Port != 9990 {
		t.Fatalf("monitor must query through the router: %+v", ex.calls)
	}
	if _, err := s.List(context.Background(), LogFilter{}); !errors.Is(err, ErrAuditDisabled) {
		t.Fatalf("nil repos must disable audit, got %v", err)
	}
}

// commandExchanger answers by command text.
type commandExchanger struct {
	replies map[string]string
	calls   int
}

func (c *commandExchanger) Exchange(ctx context.Context, ep models.Endpoint, command string) ([]byte, error) {
	c.calls++
	return []byte(c.replies[command]), nil
}

func TestNewService_MonitorPollingIsNotAudited(t *testing.T) {
	t.Parallel()

	repo := &stubExchangeRepo{}
	ex := &commandExchanger{replies: map[string]string{
		CmdPeakMonitorRunning: "true",
		CmdTodayPeaks:         `["10:00:01 peak -0.2 dBFS"]`,
		"level -15":           "ok",
	}}
	s := NewService(&repository.Repository{ExchangeRepo: repo}, testDaemon, ex, nil)

	for i := 0; i < 60; i++ {
		snap, err := s.Tick(context.Background())
		if err != nil {
			t.Fatalf("Tick: %v", err)
		}
		if !snap.Running || len(snap.Peaks) != 1 {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	}
	if ex.calls != 120 {
		t.Fatalf("expected 120 daemon exchanges, got %d", ex.calls)
	}
	if len(repo.appends) != 0 {
		t.Fatalf("monitor ticks must not be audited, got %d rows", len(repo.appends))
	}

	if _, err := s.Execute(context.Background(), "level -15"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(repo.appends) != 1 || repo.appends[0].Command != "level -15" {
		t.Fatalf("bridged commands must be audited: %+v", repo.appends)
	}
}
