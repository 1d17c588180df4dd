package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"fulfillment/internal/core/application/usecases/commands"
)

// outboxDispatchBatchSize bounds one delivery pass.
const outboxDispatchBatchSize = 100

// OutboxDispatchJob delivers committed outbox messages. Runs every five
// seconds so notifications trail their transactions closely.
type OutboxDispatchJob struct {
	handler commands.DispatchOutboxCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewOutboxDispatchJob creates a job delivering outbox messages.
func NewOutboxDispatchJob(handler commands.DispatchOutboxCommandHandler,
	logger *slog.Logger) *OutboxDispatchJob {
	return &OutboxDispatchJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "outbox_dispatch_job"),
	}
}

// Start begins the outbox dispatch job to run every five seconds.
func (j *OutboxDispatchJob) Start() error {
	_, err := j.cron.AddFunc("*/5 * * * * *", func() {
		ctx := context.Background()
		cmd, err := commands.NewDispatchOutboxCommand(outboxDispatchBatchSize)
		if err != nil {
			j.logger.ErrorContext(ctx, "Dispatch command rejected", "error", err)
			return
		}

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Outbox dispatch failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(),
		"Outbox dispatch job started (running every five seconds)")
	return nil
}

// Stop stops the outbox dispatch job.
func (j *OutboxDispatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Outbox dispatch job stopped")
}
