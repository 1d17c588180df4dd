package ports

import (
	"context"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
)

// PaymentRepository defines the persistence contract for payment attempts.
type PaymentRepository interface {
	// Add persists a new payment attempt.
	Add(ctx context.Context, attempt *payment.Attempt) error

	// Update persists changes to an existing payment attempt.
	Update(ctx context.Context, attempt *payment.Attempt) error

	// Get retrieves an attempt by its unique identifier.
	Get(ctx context.Context, id uuid.UUID) (*payment.Attempt, error)

	// GetOpenByOrderAndKind retrieves the still pending attempt of the
	// given kind for an order, if one exists. Used to reuse an open
	// gateway intent instead of creating a duplicate.
	GetOpenByOrderAndKind(ctx context.Context, orderID uuid.UUID, kind order.PaymentKind) (*payment.Attempt, error)

	// GetByGatewayID retrieves the attempt carrying the given gateway
	// payment id. Webhook confirmations resolve attempts through this.
	GetByGatewayID(ctx context.Context, gatewayID string) (*payment.Attempt, error)
}
