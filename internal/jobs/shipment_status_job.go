package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"fulfillment/internal/core/application/usecases/commands"
)

// ShipmentStatusJob polls the carrier for shipped orders. Runs every five
// minutes to pick up real track numbers and announce delivery progress.
type ShipmentStatusJob struct {
	handler commands.PollShipmentsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewShipmentStatusJob creates a job polling carrier shipment statuses.
func NewShipmentStatusJob(handler commands.PollShipmentsCommandHandler,
	logger *slog.Logger) *ShipmentStatusJob {
	return &ShipmentStatusJob{
		handler: handler,
		cron:    cron.New(),
		logger:  logger.With("component", "shipment_status_job"),
	}
}

// Start begins the shipment status job to run every five minutes.
func (j *ShipmentStatusJob) Start() error {
	_, err := j.cron.AddFunc("@every 5m", func() {
		ctx := context.Background()
		cmd, err := commands.NewPollShipmentsCommand()
		if err != nil {
			j.logger.ErrorContext(ctx, "Poll command rejected", "error", err)
			return
		}

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Shipment status poll failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(),
		"Shipment status job started (running every five minutes)")
	return nil
}

// Stop stops the shipment status job.
func (j *ShipmentStatusJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Shipment status job stopped")
}
