package payment

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// GatewayStatus mirrors the payment gateway's view of an attempt.
type GatewayStatus string

const (
	GatewayStatusPending   GatewayStatus = "pending"
	GatewayStatusSucceeded GatewayStatus = "succeeded"
	GatewayStatusFailed    GatewayStatus = "failed"
	GatewayStatusCanceled  GatewayStatus = "canceled"
)

// String returns the wire form of the status.
func (s GatewayStatus) String() string {
	return string(s)
}

// NewGatewayStatus parses a gateway status from its wire form.
func NewGatewayStatus(value string) (GatewayStatus, error) {
	switch status := GatewayStatus(value); status {
	case GatewayStatusPending, GatewayStatusSucceeded, GatewayStatusFailed, GatewayStatusCanceled:
		return status, nil
	default:
		return "", errs.NewValueIsInvalidError("gatewayStatus")
	}
}

// Attempt records one payment intent created at the gateway for an order.
// An order may accumulate several attempts; at most one of them ends up
// succeeded, which is what moves the order forward.
type Attempt struct {
	id              uuid.UUID
	orderID         uuid.UUID
	kind            order.PaymentKind
	amount          kernel.Kopeks
	gatewayID       string
	confirmationURL string
	status          GatewayStatus
	createdAt       time.Time
}

// NewAttempt creates a pending attempt before the gateway call.
func NewAttempt(orderID uuid.UUID, kind order.PaymentKind, amount kernel.Kopeks,
	now time.Time) (*Attempt, error) {
	if orderID == uuid.Nil {
		return nil, errs.NewValueIsRequiredError("orderId")
	}
	if amount <= 0 {
		return nil, errs.NewValueIsInvalidError("amount")
	}
	if _, err := order.NewPaymentKind(kind.String()); err != nil {
		return nil, err
	}

	return &Attempt{
		id:        kernel.NewUUID(),
		orderID:   orderID,
		kind:      kind,
		amount:    amount,
		status:    GatewayStatusPending,
		createdAt: now,
	}, nil
}

// RestoreAttempt reconstructs an attempt from persistence without validation.
func RestoreAttempt(id uuid.UUID, orderID uuid.UUID, kind order.PaymentKind,
	amount kernel.Kopeks, gatewayID string, confirmationURL string,
	status GatewayStatus, createdAt time.Time) *Attempt {
	return &Attempt{
		id:              id,
		orderID:         orderID,
		kind:            kind,
		amount:          amount,
		gatewayID:       gatewayID,
		confirmationURL: confirmationURL,
		status:          status,
		createdAt:       createdAt,
	}
}

func (a *Attempt) ID() uuid.UUID               { return a.id }
func (a *Attempt) OrderID() uuid.UUID          { return a.orderID }
func (a *Attempt) Kind() order.PaymentKind     { return a.kind }
func (a *Attempt) Amount() kernel.Kopeks       { return a.amount }
func (a *Attempt) GatewayID() string           { return a.gatewayID }
func (a *Attempt) ConfirmationURL() string     { return a.confirmationURL }
func (a *Attempt) GatewayStatus() GatewayStatus { return a.status }
func (a *Attempt) CreatedAt() time.Time        { return a.createdAt }

// IsOpen reports whether the attempt is still awaiting a gateway outcome.
func (a *Attempt) IsOpen() bool {
	return a.status == GatewayStatusPending
}

// AttachGateway records the gateway's identifiers once the intent exists.
func (a *Attempt) AttachGateway(gatewayID, confirmationURL string) error {
	if gatewayID == "" {
		return errs.NewValueIsRequiredError("gatewayId")
	}
	a.gatewayID = gatewayID
	a.confirmationURL = confirmationURL
	return nil
}

// Resolve moves the attempt out of pending into the given final status.
// Resolving an already resolved attempt to a different outcome is refused.
func (a *Attempt) Resolve(status GatewayStatus) error {
	if status == GatewayStatusPending {
		return errs.NewValueIsInvalidError("gatewayStatus")
	}
	if a.status != GatewayStatusPending && a.status != status {
		return errs.NewStaleStateError("paymentAttempt", a.id.String())
	}
	a.status = status
	return nil
}
