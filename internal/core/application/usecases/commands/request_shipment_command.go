package commands

import (
	"errors"

	"github.com/google/uuid"

	"fulfillment/internal/pkg/guard"
)

var ErrRequestShipmentCommandIsNotConstructed = errors.New(
	"RequestShipmentCommand must be created via NewRequestShipmentCommand constructor",
)

// RequestShipmentCommand hands an assembled, fully paid order to the carrier.
type RequestShipmentCommand struct { //nolint:recvcheck //using for validation
	orderID uuid.UUID

	guard guard.ConstructorGuard
}

// NewRequestShipmentCommand creates a command to ship an order.
func NewRequestShipmentCommand(orderID uuid.UUID) (RequestShipmentCommand, error) {
	if orderID == uuid.Nil {
		return RequestShipmentCommand{}, ErrOrderIDIsRequired
	}
	return RequestShipmentCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestShipmentCommand) Validate() error {
	return c.guard.Validate(ErrRequestShipmentCommandIsNotConstructed)
}

// OrderID returns the order identifier.
func (c RequestShipmentCommand) OrderID() uuid.UUID {
	return c.orderID
}
