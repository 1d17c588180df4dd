package outbox

import (
	"encoding/json"
	"time"
)

// UserNotification is the payload of a KindUserNotification message.
type UserNotification struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// StatusEvent is the payload of a KindStatusEvent message.
type StatusEvent struct {
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewUserNotification builds an unsent message addressed to a chat.
func NewUserNotification(chatID int64, text string, now time.Time) (*Message, error) {
	payload, err := json.Marshal(UserNotification{ChatID: chatID, Text: text})
	if err != nil {
		return nil, err
	}
	return NewMessage(KindUserNotification, payload, now)
}

// NewStatusEvent builds an unsent message announcing an order status change.
func NewStatusEvent(orderID, status string, now time.Time) (*Message, error) {
	payload, err := json.Marshal(StatusEvent{OrderID: orderID, Status: status, OccurredAt: now})
	if err != nil {
		return nil, err
	}
	return NewMessage(KindStatusEvent, payload, now)
}
