package ports

import "context"

// Notifier delivers a text message to an order owner's chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}
