package commands

import (
	"errors"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrConfirmPaymentCommandIsNotConstructed = errors.New(
		"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
	)
	ErrGatewayIDIsRequired = errors.New("gateway payment id is required")
)

// ConfirmPaymentCommand carries a payment outcome reported by the gateway,
// either through the webhook or through the sweeper's reconciliation query.
type ConfirmPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID       uuid.UUID
	kind          order.PaymentKind
	gatewayID     string
	gatewayStatus payment.GatewayStatus

	guard guard.ConstructorGuard
}

// NewConfirmPaymentCommand creates a command from the gateway's report.
func NewConfirmPaymentCommand(orderID uuid.UUID, kind string, gatewayID string,
	gatewayStatus string) (ConfirmPaymentCommand, error) {
	if orderID == uuid.Nil {
		return ConfirmPaymentCommand{}, ErrOrderIDIsRequired
	}
	if gatewayID == "" {
		return ConfirmPaymentCommand{}, ErrGatewayIDIsRequired
	}
	paymentKind, err := order.NewPaymentKind(kind)
	if err != nil {
		return ConfirmPaymentCommand{}, err
	}
	status, err := payment.NewGatewayStatus(gatewayStatus)
	if err != nil {
		return ConfirmPaymentCommand{}, err
	}

	return ConfirmPaymentCommand{
		orderID:       orderID,
		kind:          paymentKind,
		gatewayID:     gatewayID,
		gatewayStatus: status,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

func (c ConfirmPaymentCommand) OrderID() uuid.UUID                   { return c.orderID }
func (c ConfirmPaymentCommand) Kind() order.PaymentKind              { return c.kind }
func (c ConfirmPaymentCommand) GatewayID() string                    { return c.gatewayID }
func (c ConfirmPaymentCommand) GatewayStatus() payment.GatewayStatus { return c.gatewayStatus }
