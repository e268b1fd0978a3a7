package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"audio_bridge/internal/models"

	"github.com/google/uuid"
)

type ExchangeSQLite struct {
	db *sql.DB
}

func NewExchangeSQLite(db *sql.DB) *ExchangeSQLite { return &ExchangeSQLite{db: db} }

const (
	// SQLite TIMESTAMP text format
	sqliteTimeLayout = "2006-01-02 15:04:05"

	insertExchangeSQL = `
		INSERT INTO bridge_exchanges (id, occurred_at, command, service, address, port, bytes, failed, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectExchangesSQL = `SELECT id, occurred_at, command, service, address, port, bytes, failed, error, duration_ms FROM bridge_exchanges`
)

// Append inserts a new exchange. If ID or OccurredAt are empty, they’re set.
func (r *ExchangeSQLite) Append(ctx context.Context, e models.Exchange) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var errPtr *string
	if e.Error != "" {
		errPtr = &e.Error
	}

	_, err := r.db.ExecContext(ctx, insertExchangeSQL,
		e.ID,
		e.OccurredAt.Format(sqliteTimeLayout),
		e.Command,
		strings.ToLower(string(e.Service)),
		e.Address,
		e.Port,
		e.Bytes,
		e.Failed,
		errPtr,
		e.DurationMs,
	)
	return err
}

// List returns exchanges filtered by [from, to] (inclusive) and/or service, ordered ASC.
func (r *ExchangeSQLite) List(ctx context.Context, from, to time.Time, service string) ([]models.Exchange, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimeLayout))
	}
	if service = strings.ToLower(strings.TrimSpace(service)); service != "" {
		conds = append(conds, "service = ?")
		args = append(args, service)
	}

	q := selectExchangesSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Exchange, 0, 64)
	for rows.Next() {
		var (
			ex         models.Exchange
			occurredAt string
			service    string
			errStr     sql.NullString
		)
		if err := rows.Scan(&ex.ID, &occurredAt, &ex.Command, &service, &ex.Address, &ex.Port,
			&ex.Bytes, &ex.Failed, &errStr, &ex.DurationMs); err != nil {
			return nil, err
		}
		ts, err := time.ParseInLocation(sqliteTimeLayout, occurredAt, time.UTC)
		if err != nil {
			return nil, err
		}
		ex.OccurredAt = ts
		ex.Service = models.Service(service)
		if errStr.Valid {
			ex.Error = errStr.String
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
