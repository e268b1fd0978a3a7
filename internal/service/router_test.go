package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"audio_bridge/internal/daemon"
	"audio_bridge/internal/models"
)

// ---- Test doubles ----

type exchangeCall struct {
	ep      models.Endpoint
	command string
}

type stubExchanger struct {
	resp  []byte
	err   error
	calls []exchangeCall
}

func (s *stubExchanger) Exchange(ctx context.Context, ep models.Endpoint, command string) ([]byte, error) {
	s.calls = append(s.calls, exchangeCall{ep: ep, command: command})
	return s.resp, s.err
}

type stubExchangeRepo struct {
	appends []models.Exchange
	err     error
}

func (r *stubExchangeRepo) Append(ctx context.Context, e models.Exchange) error {
	r.appends = append(r.appends, e)
	return r.err
}

func (r *stubExchangeRepo) List(ctx context.Context, from, to time.Time, svc string) ([]models.Exchange, error) {
	return nil, nil
}

var testDaemon = DaemonParams{Address: "localhost", BasePort: 9990}

// ---- Tests ----

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		command string
		want    models.Service
	}{
		{"amp_on", models.ServiceControl},
		{"amp_switch toggle", models.ServiceControl},
		{"restart_peaudiosys", models.ServiceControl},
		{"restart_", models.ServiceControl},
		{"level -15", models.ServiceNormal},
		{"aux amp_switch on", models.ServiceNormal},
		{"aux peak_monitor_running", models.ServiceNormal},
		{" amp_on", models.ServiceNormal},
		{"AMP_ON", models.ServiceNormal},
		{"restart", models.ServiceNormal},
		{"", models.ServiceNormal},
	}
	for _, tc := range cases {
		if got := Classify(tc.command); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.command, got, tc.want)
		}
	}
}

func TestRouter_RoutesByPrefix(t *testing.T) {
	t.Parallel()

	ex := &stubExchanger{resp: []byte("done")}
	r := NewRouterService(testDaemon, ex, nil)

	for _, cmd := range []string{"amp_on", "level -15"} {
		if _, err := r.Execute(context.Background(), cmd); err != nil {
			t.Fatalf("Execute(%q): %v", cmd, err)
		}
	}
	if len(ex.calls) != 2 {
		t.Fatalf("want 2 exchanges, got %d", len(ex.calls))
	}
	if got := ex.calls[0].ep; got.Port != 9991 || got.Address != "localhost" {
		t.Errorf("amp_on routed to %v, want localhost:9991", got)
	}
	if got := ex.calls[1].ep; got.Port != 9990 {
		t.Errorf("level routed to %v, want port 9990", got)
	}
	if ex.calls[1].command != "level -15" {
		t.Errorf("command altered: %q", ex.calls[1].command)
	}
}

func TestRouter_Route(t *testing.T) {
	t.Parallel()

	r := NewRouterService(testDaemon, &stubExchanger{}, nil)
	if got := r.Route("restart_all"); got != (models.Endpoint{Address: "localhost", Port: 9991}) {
		t.Errorf("Route(restart_all) = %v", got)
	}
	if got := r.Route("state"); got != (models.Endpoint{Address: "localhost", Port: 9990}) {
		t.Errorf("Route(state) = %v", got)
	}
}

func TestRouter_ReturnsResponseVerbatim(t *testing.T) {
	t.Parallel()

	body := "{\"level\": -15.0}\n\x00trailing  "
	r := NewRouterService(testDaemon, &stubExchanger{resp: []byte(body)}, nil)
	got, err := r.Execute(context.Background(), "state")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != body {
		t.Fatalf("got %q, want %q", got, body)
	}
}

func TestRouter_PropagatesTransportError(t *testing.T) {
	t.Parallel()

	te := &daemon.TransportError{Op: daemon.OpConnect, Endpoint: models.Endpoint{Address: "localhost", Port: 9990}, Err: errors.New("refused")}
	r := NewRouterService(testDaemon, &stubExchanger{err: te}, nil)

	got, err := r.Execute(context.Background(), "state")
	if got != "" {
		t.Errorf("expected empty body on error, got %q", got)
	}
	var asTE *daemon.TransportError
	if !errors.As(err, &asTE) {
		t.Fatalf("expected *daemon.TransportError, got %T %v", err, err)
	}
	if !errors.Is(err, daemon.ErrUnavailable) {
		t.Fatalf("connect failure must match ErrUnavailable")
	}
}

func TestRouter_AuditsEveryExchange(t *testing.T) {
	t.Parallel()

	repo := &stubExchangeRepo{}
	ex := &stubExchanger{resp: []byte("on")}
	r := NewRouterService(testDaemon, ex, repo)

	if _, err := r.Execute(context.Background(), "amp_on"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	ex.resp, ex.err = nil, errors.New("boom")
	if _, err := r.Execute(context.Background(), "level -3"); err == nil {
		t.Fatalf("expected error")
	}

	if len(repo.appends) != 2 {
		t.Fatalf("want 2 audit rows, got %d", len(repo.appends))
	}
	first, second := repo.appends[0], repo.appends[1]
	if first.Command != "amp_on" || first.Service != models.ServiceControl || first.Port != 9991 || first.Bytes != 2 || first.Failed {
		t.Errorf("unexpected first audit row: %+v", first)
	}
	if second.Service != models.ServiceNormal || !second.Failed || second.Error != "boom" {
		t.Errorf("unexpected second audit row: %+v", second)
	}
	if first.OccurredAt.Location() != time.UTC {
		t.Errorf("audit time must be UTC")
	}
}

func TestRouter_AuditFailureDoesNotFailExchange(t *testing.T) {
	t.Parallel()

	repo := &stubExchangeRepo{err: errors.New("disk full")}
	r := NewRouterService(testDaemon, &stubExchanger{resp: []byte("ok")}, repo)

	got, err := r.Execute(context.Background(), "state")
	if err != nil || got != "ok" {
		t.Fatalf("got (%q, %v), want (ok, nil)", got, err)
	}
}
