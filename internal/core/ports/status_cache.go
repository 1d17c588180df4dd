package ports

import "context"

// StatusCache remembers the last carrier status announced per order so the
// shipment poller does not notify the buyer about the same status twice.
// A cache miss returns an empty string and no error.
type StatusCache interface {
	GetLastStatus(ctx context.Context, orderID string) (string, error)
	SetLastStatus(ctx context.Context, orderID string, status string) error
}
