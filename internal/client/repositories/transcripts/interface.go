// Package transcripts stores finalized chat messages locally so earlier
// conversations can be reviewed offline. In-flight messages are never
// written; a message reaches this store only once its content is final.
package transcripts

import (
	"context"

	"github.com/dmitrijs2005/eduterm/internal/client/models"
)

type Repository interface {
	// Append stores one finalized message.
	Append(ctx context.Context, msg models.ChatMessage) error

	// List returns up to limit most recent messages in chronological order.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]models.ChatMessage, error)

	// Clear removes all stored messages.
	Clear(ctx context.Context) error
}
