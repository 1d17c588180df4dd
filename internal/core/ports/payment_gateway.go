package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"
)

// IntentRequest is everything the gateway needs to open a payment intent.
// The idempotence key makes an accidental double call return the same
// intent instead of charging twice.
type IntentRequest struct {
	IdempotenceKey string
	Amount         kernel.Kopeks
	Description    string
	OrderID        string
	PaymentKind    string
	ReturnURL      string
}

// Intent is the gateway's answer to a created payment intent.
type Intent struct {
	GatewayID       string
	ConfirmationURL string
}

// PaymentGateway is the outbound contract to the payment provider.
// Failures come back as GatewayError; side-effect-creating calls are
// never retried automatically.
type PaymentGateway interface {
	// CreateIntent opens a payment intent at the gateway.
	CreateIntent(ctx context.Context, request IntentRequest) (Intent, error)

	// QueryStatus fetches the current gateway status of a payment.
	// The sweeper reconciles through this before abandoning an order.
	QueryStatus(ctx context.Context, gatewayID string) (payment.GatewayStatus, error)
}
