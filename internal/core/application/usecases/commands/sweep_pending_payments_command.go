package commands

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/guard"
)

var (
	ErrSweepPendingPaymentsCommandIsNotConstructed = errors.New(
		"SweepPendingPaymentsCommand must be created via NewSweepPendingPaymentsCommand constructor",
	)
	ErrTimeoutIsInvalid = errors.New("payment timeout must be greater than 0")
)

// SweepPendingPaymentsCommand triggers one reconciliation pass over orders
// whose payment window has expired.
type SweepPendingPaymentsCommand struct { //nolint:recvcheck //using for validation
	timeout time.Duration

	guard guard.ConstructorGuard
}

// NewSweepPendingPaymentsCommand creates a sweep command with the payment
// window duration.
func NewSweepPendingPaymentsCommand(timeout time.Duration) (SweepPendingPaymentsCommand, error) {
	if timeout <= 0 {
		return SweepPendingPaymentsCommand{}, ErrTimeoutIsInvalid
	}
	return SweepPendingPaymentsCommand{
		timeout: timeout,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SweepPendingPaymentsCommand) Validate() error {
	return c.guard.Validate(ErrSweepPendingPaymentsCommandIsNotConstructed)
}

// Timeout returns the payment window duration.
func (c SweepPendingPaymentsCommand) Timeout() time.Duration {
	return c.timeout
}
