package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"wahlkompass/internal/models"
)

// StatementRecord is one past analysis kept for the web layer.
type StatementRecord struct {
	ID        int                   `json:"id"`
	Statement string                `json:"statement"`
	Result    models.AnalysisResult `json:"analysis_result"`
	CreatedAt time.Time             `json:"created_at"`
}

// HistoryStore persists analyzed statements alongside the chunk index,
// sharing the vector store's connection pool.
type HistoryStore struct {
	pool *pgxpool.Pool
}

func NewHistoryStore(ctx context.Context, pool *pgxpool.Pool) (*HistoryStore, error) {
	createTable := `
		CREATE TABLE IF NOT EXISTS political_statements (
			id SERIAL PRIMARY KEY,
			statement TEXT NOT NULL,
			analysis_result JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := pool.Exec(ctx, createTable); err != nil {
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}
	return &HistoryStore{pool: pool}, nil
}

// Save records a completed analysis.
func (hs *HistoryStore) Save(ctx context.Context, statement string, result models.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode analysis result: %w", err)
	}
	_, err = hs.pool.Exec(ctx,
		"INSERT INTO political_statements (statement, analysis_result) VALUES ($1, $2)",
		statement, payload)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Recent returns the most recently analyzed statements, newest first.
func (hs *HistoryStore) Recent(ctx context.Context, limit int) ([]StatementRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := hs.pool.Query(ctx,
		"SELECT id, statement, analysis_result, created_at FROM political_statements ORDER BY created_at DESC LIMIT $1",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []StatementRecord
	for rows.Next() {
		var rec StatementRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.Statement, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to decode analysis result: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
