package repository

import (
	"context"
	"database/sql"
	"time"

	"audio_bridge/internal/models"
)

// ExchangeRepo stores the audit trail of bridged commands.
type ExchangeRepo interface {
	Append(ctx context.Context, e models.Exchange) error
	List(ctx context.Context, from, to time.Time, service string) ([]models.Exchange, error)
}

type Repository struct {
	ExchangeRepo ExchangeRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ExchangeRepo: NewExchangeSQLite(db),
	}
}
