package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var (
	ErrDispatchOutboxCommandIsNotConstructed = errors.New(
		"DispatchOutboxCommand must be created via NewDispatchOutboxCommand constructor",
	)
	ErrBatchSizeIsInvalid = errors.New("batch size must be positive")
)

// DispatchOutboxCommand triggers one delivery pass over unsent outbox
// messages.
type DispatchOutboxCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

// NewDispatchOutboxCommand creates a dispatch command for up to batchSize
// messages.
func NewDispatchOutboxCommand(batchSize int) (DispatchOutboxCommand, error) {
	if batchSize <= 0 {
		return DispatchOutboxCommand{}, ErrBatchSizeIsInvalid
	}
	return DispatchOutboxCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c DispatchOutboxCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOutboxCommandIsNotConstructed)
}

// BatchSize returns the maximum number of messages to deliver in one pass.
func (c DispatchOutboxCommand) BatchSize() int {
	return c.batchSize
}
