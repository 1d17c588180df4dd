// Package outbox models messages written in the same transaction as the
// state change they announce. A background dispatcher delivers them later,
// so a notification is sent if and only if the transaction committed.
package outbox

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Kind routes a message to its delivery channel.
type Kind string

const (
	// KindUserNotification goes to the order owner's chat.
	KindUserNotification Kind = "user_notification"
	// KindStatusEvent goes to the status event stream.
	KindStatusEvent Kind = "status_event"
)

// Message is one undelivered (or delivered) outbox entry.
type Message struct {
	id        uuid.UUID
	kind      Kind
	payload   []byte
	createdAt time.Time
	sentAt    *time.Time
}

// NewMessage creates an unsent message with a JSON payload.
func NewMessage(kind Kind, payload []byte, now time.Time) (*Message, error) {
	if kind != KindUserNotification && kind != KindStatusEvent {
		return nil, errs.NewValueIsInvalidError("kind")
	}
	if len(payload) == 0 {
		return nil, errs.NewValueIsRequiredError("payload")
	}
	return &Message{
		id:        kernel.NewUUID(),
		kind:      kind,
		payload:   payload,
		createdAt: now,
	}, nil
}

// RestoreMessage reconstructs a message from persistence without validation.
func RestoreMessage(id uuid.UUID, kind Kind, payload []byte,
	createdAt time.Time, sentAt *time.Time) *Message {
	return &Message{
		id:        id,
		kind:      kind,
		payload:   payload,
		createdAt: createdAt,
		sentAt:    sentAt,
	}
}

func (m *Message) ID() uuid.UUID        { return m.id }
func (m *Message) Kind() Kind           { return m.kind }
func (m *Message) Payload() []byte      { return m.payload }
func (m *Message) CreatedAt() time.Time { return m.createdAt }
func (m *Message) SentAt() *time.Time   { return m.sentAt }

// IsSent reports whether the message was already delivered.
func (m *Message) IsSent() bool {
	return m.sentAt != nil
}

// MarkSent stamps the delivery time. Marking twice is refused so the
// dispatcher notices double delivery bugs instead of hiding them.
func (m *Message) MarkSent(now time.Time) error {
	if m.sentAt != nil {
		return errs.NewStaleStateError("outboxMessage", m.id.String())
	}
	m.sentAt = &now
	return nil
}
