package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindsoothe-backend/internal/models"
)

type ExchangeRepo struct {
	pool *pgxpool.Pool
}

func NewExchangeRepo(pool *pgxpool.Pool) *ExchangeRepo {
	return &ExchangeRepo{pool: pool}
}

func (r *ExchangeRepo) Record(ctx context.Context, e *models.Exchange) error {
	prepareExchange(e)

	query := `
		INSERT INTO chat_exchanges (id, session_key, user_message, assistant_message, provider, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.SessionKey, e.UserMessage, e.AssistantMessage, e.Provider, e.LatencyMS, e.CreatedAt,
	)
	return err
}

func (r *ExchangeRepo) ListBySession(ctx context.Context, sessionKey string, limit int) ([]*models.Exchange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_key, user_message, assistant_message, provider, latency_ms, created_at
		FROM chat_exchanges
		WHERE session_key = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, sessionKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exchanges []*models.Exchange
	for rows.Next() {
		e := &models.Exchange{}
		if err := rows.Scan(&e.ID, &e.SessionKey, &e.UserMessage, &e.AssistantMessage, &e.Provider, &e.LatencyMS, &e.CreatedAt); err != nil {
			return nil, err
		}
		exchanges = append(exchanges, e)
	}
	return exchanges, rows.Err()
}

func (r *ExchangeRepo) Close() {
	r.pool.Close()
}

func prepareExchange(e *models.Exchange) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}
