package repository

import (
	"path/filepath"
	"testing"
	"time"

	"audio_bridge/internal/models"
	"audio_bridge/internal/repository/db"
)

func TestExchangeSQLite_RoundTrip(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "bridge.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = conn.Close() }()

	repo := NewExchangeSQLite(conn)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	for i, e := range []models.Exchange{
		{Command: "level -15", Service: models.ServiceNormal, Address: "localhost", Port: 9990, Bytes: 5},
		{Command: "amp_off", Service: models.ServiceControl, Address: "localhost", Port: 9991, Failed: true, Error: "refused"},
		{Command: "state", Service: models.ServiceNormal, Address: "localhost", Port: 9990, Bytes: 300},
	} {
		e.OccurredAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Append(ctx(t), e); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	all, err := repo.List(ctx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].Command != "level -15" || all[2].Command != "state" {
		t.Fatalf("unexpected order: %+v", all)
	}
	if !all[1].Failed || all[1].Error != "refused" || all[1].ID == "" {
		t.Fatalf("failed exchange not persisted: %+v", all[1])
	}

	control, err := repo.List(ctx(t), time.Time{}, time.Time{}, "control")
	if err != nil {
		t.Fatalf("List control: %v", err)
	}
	if len(control) != 1 || control[0].Port != 9991 {
		t.Fatalf("service filter: %+v", control)
	}

	ranged, err := repo.List(ctx(t), base.Add(time.Minute), base.Add(2*time.Minute), "")
	if err != nil {
		t.Fatalf("List range: %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("range filter: want 2, got %d", len(ranged))
	}
}
