package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
)

// ArchiveOrderCommandHandler closes a shipped order. Archiving is an
// operator decision, never automatic: a carrier status alone does not
// prove the buyer picked the parcel up.
type ArchiveOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	locker     OrderLocker
}

// NewArchiveOrderCommandHandler creates a handler for archiving orders.
func NewArchiveOrderCommandHandler(uowFactory OrderUoWFactory,
	locker OrderLocker) ArchiveOrderCommandHandler {
	return ArchiveOrderCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
	}
}

// Handle processes the archive command.
func (h *ArchiveOrderCommandHandler) Handle(ctx context.Context, cmd ArchiveOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	unlock := h.locker.Lock(cmd.OrderID().String())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = aggregate.Archive(); err != nil {
		return err
	}
	err = uow.OrderRepository().AttemptTransition(ctx, aggregate,
		[]order.Status{order.StatusShipped})
	if err != nil {
		return err
	}

	event, err := outbox.NewStatusEvent(aggregate.ID().String(),
		aggregate.Status().String(), time.Now().UTC())
	if err != nil {
		return err
	}
	if err = uow.OutboxRepository().Add(ctx, event); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
