package commands

import (
	"errors"

	"github.com/google/uuid"

	"fulfillment/internal/pkg/guard"
)

var ErrAssembleOrderCommandIsNotConstructed = errors.New(
	"AssembleOrderCommand must be created via NewAssembleOrderCommand constructor",
)

// AssembleOrderCommand marks a paid order as packed and ready to ship.
type AssembleOrderCommand struct { //nolint:recvcheck //using for validation
	orderID uuid.UUID

	guard guard.ConstructorGuard
}

// NewAssembleOrderCommand creates a command to mark an order assembled.
func NewAssembleOrderCommand(orderID uuid.UUID) (AssembleOrderCommand, error) {
	if orderID == uuid.Nil {
		return AssembleOrderCommand{}, ErrOrderIDIsRequired
	}
	return AssembleOrderCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AssembleOrderCommand) Validate() error {
	return c.guard.Validate(ErrAssembleOrderCommandIsNotConstructed)
}

// OrderID returns the order identifier.
func (c AssembleOrderCommand) OrderID() uuid.UUID {
	return c.orderID
}
