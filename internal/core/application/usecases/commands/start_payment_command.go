package commands

import (
	"errors"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrStartPaymentCommandIsNotConstructed = errors.New(
	"StartPaymentCommand must be created via NewStartPaymentCommand constructor",
)

// StartPaymentCommand represents a request to open a payment attempt of a
// given kind for an order.
type StartPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID uuid.UUID
	kind    order.PaymentKind

	guard guard.ConstructorGuard
}

// NewStartPaymentCommand creates a command to start a payment attempt.
func NewStartPaymentCommand(orderID uuid.UUID, kind string) (StartPaymentCommand, error) {
	if orderID == uuid.Nil {
		return StartPaymentCommand{}, ErrOrderIDIsRequired
	}
	paymentKind, err := order.NewPaymentKind(kind)
	if err != nil {
		return StartPaymentCommand{}, err
	}

	return StartPaymentCommand{
		orderID: orderID,
		kind:    paymentKind,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c StartPaymentCommand) Validate() error {
	return c.guard.Validate(ErrStartPaymentCommandIsNotConstructed)
}

func (c StartPaymentCommand) OrderID() uuid.UUID        { return c.orderID }
func (c StartPaymentCommand) Kind() order.PaymentKind   { return c.kind }
