// Package outboxrepo persists outbox messages.
package outboxrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/outbox"
)

// MessageDTO is the database row of an outbox message.
type MessageDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind      string
	Payload   []byte
	CreatedAt time.Time
	SentAt    *time.Time `gorm:"index"`
}

// TableName overrides GORM's default naming to use "outbox_messages".
func (MessageDTO) TableName() string {
	return "outbox_messages"
}

// fromDomain converts an outbox message to its database representation.
func fromDomain(message *outbox.Message) MessageDTO {
	return MessageDTO{
		ID:        message.ID(),
		Kind:      string(message.Kind()),
		Payload:   message.Payload(),
		CreatedAt: message.CreatedAt(),
		SentAt:    message.SentAt(),
	}
}

// toDomain reconstructs the message from a database row.
func toDomain(dto MessageDTO) *outbox.Message {
	return outbox.RestoreMessage(
		dto.ID,
		outbox.Kind(dto.Kind),
		dto.Payload,
		dto.CreatedAt,
		dto.SentAt,
	)
}
