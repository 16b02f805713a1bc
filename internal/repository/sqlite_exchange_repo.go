package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"mindsoothe-backend/internal/models"
)

// SQLiteExchangeRepo is the single-file variant of ExchangeRepo.
type SQLiteExchangeRepo struct {
	db *sql.DB
}

func NewSQLiteExchangeRepo(db *sql.DB) *SQLiteExchangeRepo {
	return &SQLiteExchangeRepo{db: db}
}

func (r *SQLiteExchangeRepo) Record(ctx context.Context, e *models.Exchange) error {
	prepareExchange(e)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_exchanges (id, session_key, user_message, assistant_message, provider, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID.String(), e.SessionKey, e.UserMessage, e.AssistantMessage, e.Provider, e.LatencyMS, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

func (r *SQLiteExchangeRepo) ListBySession(ctx context.Context, sessionKey string, limit int) ([]*models.Exchange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_key, user_message, assistant_message, provider, latency_ms, created_at
		FROM chat_exchanges
		WHERE session_key = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, sessionKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []*models.Exchange
	for rows.Next() {
		var id string
		e := &models.Exchange{}
		if err := rows.Scan(&id, &e.SessionKey, &e.UserMessage, &e.AssistantMessage, &e.Provider, &e.LatencyMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid exchange id %q: %w", id, err)
		}
		exchanges = append(exchanges, e)
	}
	return exchanges, rows.Err()
}

func (r *SQLiteExchangeRepo) Close() {
	r.db.Close()
}
