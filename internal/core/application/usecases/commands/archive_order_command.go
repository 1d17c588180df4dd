package commands

import (
	"errors"

	"github.com/google/uuid"

	"fulfillment/internal/pkg/guard"
)

var ErrArchiveOrderCommandIsNotConstructed = errors.New(
	"ArchiveOrderCommand must be created via NewArchiveOrderCommand constructor",
)

// ArchiveOrderCommand closes a shipped order.
type ArchiveOrderCommand struct { //nolint:recvcheck //using for validation
	orderID uuid.UUID

	guard guard.ConstructorGuard
}

// NewArchiveOrderCommand creates a command to archive an order.
func NewArchiveOrderCommand(orderID uuid.UUID) (ArchiveOrderCommand, error) {
	if orderID == uuid.Nil {
		return ArchiveOrderCommand{}, ErrOrderIDIsRequired
	}
	return ArchiveOrderCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ArchiveOrderCommand) Validate() error {
	return c.guard.Validate(ErrArchiveOrderCommandIsNotConstructed)
}

// OrderID returns the order identifier.
func (c ArchiveOrderCommand) OrderID() uuid.UUID {
	return c.orderID
}
