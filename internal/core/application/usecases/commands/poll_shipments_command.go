package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrPollShipmentsCommandIsNotConstructed = errors.New(
	"PollShipmentsCommand must be created via NewPollShipmentsCommand constructor",
)

// PollShipmentsCommand triggers one tracking pass over shipped orders.
type PollShipmentsCommand struct { //nolint:recvcheck //using for validation
	guard guard.ConstructorGuard
}

// NewPollShipmentsCommand creates a poll command.
func NewPollShipmentsCommand() (PollShipmentsCommand, error) {
	return PollShipmentsCommand{
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c PollShipmentsCommand) Validate() error {
	return c.guard.Validate(ErrPollShipmentsCommandIsNotConstructed)
}
