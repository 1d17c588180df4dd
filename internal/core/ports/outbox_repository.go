package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/outbox"
)

// OutboxRepository defines the persistence contract for outbox messages.
type OutboxRepository interface {
	// Add persists a new message inside the caller's transaction.
	Add(ctx context.Context, message *outbox.Message) error

	// Update persists changes to an existing message.
	Update(ctx context.Context, message *outbox.Message) error

	// GetUnsent retrieves up to limit undelivered messages, oldest first.
	GetUnsent(ctx context.Context, limit int) ([]*outbox.Message, error)
}
