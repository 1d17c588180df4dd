package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
)

// AssembleOrderCommandHandler moves a paid order into assembled. A buyer
// paying in two parts is prompted for the remainder at this point.
type AssembleOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	locker     OrderLocker
}

// NewAssembleOrderCommandHandler creates a handler for order assembly.
func NewAssembleOrderCommandHandler(uowFactory OrderUoWFactory,
	locker OrderLocker) AssembleOrderCommandHandler {
	return AssembleOrderCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
	}
}

// Handle processes the assemble command.
func (h *AssembleOrderCommandHandler) Handle(ctx context.Context, cmd AssembleOrderCommand) error {
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

	if err = aggregate.MarkAssembled(); err != nil {
		return err
	}
	err = uow.OrderRepository().AttemptTransition(ctx, aggregate,
		[]order.Status{order.StatusPaidPartially, order.StatusPaidFull})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	text := "Your order is assembled and will ship shortly."
	if !aggregate.FullyPaid() {
		text = "Your order is assembled. Please pay the remaining amount to ship it."
	}
	notification, err := outbox.NewUserNotification(aggregate.OwnerID(), text, now)
	if err != nil {
		return err
	}
	if err = uow.OutboxRepository().Add(ctx, notification); err != nil {
		return err
	}

	event, err := outbox.NewStatusEvent(aggregate.ID().String(), aggregate.Status().String(), now)
	if err != nil {
		return err
	}
	if err = uow.OutboxRepository().Add(ctx, event); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
