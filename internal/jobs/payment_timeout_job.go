package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"fulfillment/internal/core/application/usecases/commands"
)

// PaymentTimeoutJob sweeps orders stuck in pending_payment. Runs every
// minute; the sweep itself reconciles with the gateway before abandoning,
// so a payment that succeeded while the webhook was lost is still applied.
type PaymentTimeoutJob struct {
	handler commands.SweepPendingPaymentsCommandHandler
	timeout time.Duration
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewPaymentTimeoutJob creates a job sweeping payments older than timeout.
func NewPaymentTimeoutJob(handler commands.SweepPendingPaymentsCommandHandler,
	timeout time.Duration, logger *slog.Logger) *PaymentTimeoutJob {
	return &PaymentTimeoutJob{
		handler: handler,
		timeout: timeout,
		cron:    cron.New(),
		logger:  logger.With("component", "payment_timeout_job"),
	}
}

// Start begins the payment timeout job to run every minute.
func (j *PaymentTimeoutJob) Start() error {
	_, err := j.cron.AddFunc("@every 1m", func() {
		ctx := context.Background()
		cmd, err := commands.NewSweepPendingPaymentsCommand(j.timeout)
		if err != nil {
			j.logger.ErrorContext(ctx, "Sweep command rejected", "error", err)
			return
		}

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Payment timeout sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(),
		"Payment timeout job started (running every minute)", "timeout", j.timeout)
	return nil
}

// Stop stops the payment timeout job.
func (j *PaymentTimeoutJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Payment timeout job stopped")
}
