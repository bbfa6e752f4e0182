package transcripts

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eduterm/internal/client/models"
	"github.com/dmitrijs2005/eduterm/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, msg models.ChatMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transcripts (id, content, is_ai, created_at) VALUES (?, ?, ?, ?)
	`, msg.ID, msg.Content, msg.IsAI, msg.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to append transcript message: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	query := `SELECT id, content, is_ai, created_at FROM transcripts ORDER BY created_at, rowid`
	args := []any{}
	if limit > 0 {
		// take the newest N, then flip back to chronological order
		query = `SELECT id, content, is_ai, created_at FROM (
			SELECT rowid, id, content, is_ai, created_at FROM transcripts ORDER BY created_at DESC, rowid DESC LIMIT ?
		) ORDER BY created_at, rowid`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	var result []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		var createdAt string
		if err := rows.Scan(&msg.ID, &msg.Content, &msg.IsAI, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript row: %w", err)
		}
		msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transcript timestamp: %w", err)
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcript rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transcripts`); err != nil {
		return fmt.Errorf("failed to clear transcripts: %w", err)
	}
	return nil
}
