package ports

import (
	"context"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/shipment"
)

// ShipmentRepository defines the persistence contract for shipment
// requests. Requests are keyed by order id, one per order at most.
type ShipmentRepository interface {
	// Add persists a new shipment request. Adding a second request for
	// the same order fails on the primary key.
	Add(ctx context.Context, request *shipment.Request) error

	// Update persists changes to an existing shipment request.
	Update(ctx context.Context, request *shipment.Request) error

	// GetByOrder retrieves the shipment request of an order, if any.
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*shipment.Request, error)
}
