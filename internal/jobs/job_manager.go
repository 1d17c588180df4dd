package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	paymentTimeoutJob *PaymentTimeoutJob
	shipmentStatusJob *ShipmentStatusJob
	outboxDispatchJob *OutboxDispatchJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	sweepHandler commands.SweepPendingPaymentsCommandHandler,
	paymentTimeout time.Duration,
	pollHandler commands.PollShipmentsCommandHandler,
	dispatchHandler commands.DispatchOutboxCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		paymentTimeoutJob: NewPaymentTimeoutJob(sweepHandler, paymentTimeout, logger),
		shipmentStatusJob: NewShipmentStatusJob(pollHandler, logger),
		outboxDispatchJob: NewOutboxDispatchJob(dispatchHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.outboxDispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start outbox dispatch job: %w", err)
	}

	if err := jm.paymentTimeoutJob.Start(); err != nil {
		jm.outboxDispatchJob.Stop()
		return fmt.Errorf("failed to start payment timeout job: %w", err)
	}

	if err := jm.shipmentStatusJob.Start(); err != nil {
		jm.paymentTimeoutJob.Stop()
		jm.outboxDispatchJob.Stop()
		return fmt.Errorf("failed to start shipment status job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.shipmentStatusJob.Stop()
	jm.paymentTimeoutJob.Stop()
	jm.outboxDispatchJob.Stop()
}
