// Package ports defines the contracts between the application core and
// infrastructure: repositories, the unit of work, and the outbound
// gateways for payments, shipping and notifications.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate
	// unconditionally. Status changes must go through AttemptTransition
	// instead.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)

	// GetAllInStatus retrieves all orders currently in the given status.
	GetAllInStatus(ctx context.Context, status order.Status) ([]*order.Order, error)

	// GetPendingPaymentOlderThan retrieves orders whose payment clock
	// started before the cutoff and that are still awaiting payment.
	// The sweeper works off this set.
	GetPendingPaymentOlderThan(ctx context.Context, cutoff time.Time) ([]*order.Order, error)

	// AttemptTransition persists the aggregate's current state with a
	// conditional update: the write only applies while the stored status
	// is still one of expectedFrom. When another writer got there first,
	// no row changes and a StaleStateError is returned; the caller
	// re-reads fresh state and decides whether the work is already done.
	AttemptTransition(ctx context.Context, aggregate *order.Order, expectedFrom []order.Status) error
}
