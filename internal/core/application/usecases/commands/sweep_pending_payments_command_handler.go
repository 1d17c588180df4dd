package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// SweepPendingPaymentsCommandHandler reconciles orders stuck in
// pending_payment past the payment window. Before abandoning anything it
// asks the gateway for the real outcome: a payment that actually succeeded
// while the webhook got lost is applied, everything else is abandoned.
type SweepPendingPaymentsCommandHandler struct {
	uowFactory     PaymentUoWFactory
	gateway        ports.PaymentGateway
	confirmHandler ConfirmPaymentCommandHandler
	locker         OrderLocker
}

// NewSweepPendingPaymentsCommandHandler creates the sweeper handler.
func NewSweepPendingPaymentsCommandHandler(uowFactory PaymentUoWFactory,
	gateway ports.PaymentGateway, confirmHandler ConfirmPaymentCommandHandler,
	locker OrderLocker) SweepPendingPaymentsCommandHandler {
	return SweepPendingPaymentsCommandHandler{
		uowFactory:     uowFactory,
		gateway:        gateway,
		confirmHandler: confirmHandler,
		locker:         locker,
	}
}

// Handle runs one sweep. Each order is reconciled in its own transaction
// so one failure does not poison the rest of the pass. The returned error
// is the first one encountered, after the pass finishes.
func (h *SweepPendingPaymentsCommandHandler) Handle(ctx context.Context,
	cmd SweepPendingPaymentsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	cutoff := time.Now().UTC().Add(-cmd.Timeout())

	expired, err := h.expiredOrders(ctx, cutoff)
	if err != nil {
		return err
	}

	var firstErr error
	for _, aggregate := range expired {
		if err = h.sweepOne(ctx, aggregate); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *SweepPendingPaymentsCommandHandler) expiredOrders(ctx context.Context,
	cutoff time.Time) ([]*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	expired, err := uow.OrderRepository().GetPendingPaymentOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return expired, nil
}

func (h *SweepPendingPaymentsCommandHandler) sweepOne(ctx context.Context,
	aggregate *order.Order) error {
	attempt, err := h.openAttempt(ctx, aggregate)
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	// Ask the gateway before giving up. No attempt or no answer counts
	// the same as an unpaid order.
	if attempt != nil && attempt.GatewayID() != "" {
		status, queryErr := h.gateway.QueryStatus(ctx, attempt.GatewayID())
		if queryErr == nil && status == payment.GatewayStatusSucceeded {
			cmd, cmdErr := NewConfirmPaymentCommand(aggregate.ID(), attempt.Kind().String(),
				attempt.GatewayID(), status.String())
			if cmdErr != nil {
				return cmdErr
			}
			return h.confirmHandler.Handle(ctx, cmd)
		}
	}

	return h.abandon(ctx, aggregate, attempt)
}

func (h *SweepPendingPaymentsCommandHandler) openAttempt(ctx context.Context,
	aggregate *order.Order) (*payment.Attempt, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	attempt, err := uow.PaymentRepository().GetOpenByOrderAndKind(ctx,
		aggregate.ID(), aggregate.PaymentKind())
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return attempt, nil
}

func (h *SweepPendingPaymentsCommandHandler) abandon(ctx context.Context,
	stale *order.Order, attempt *payment.Attempt) error {
	unlock := h.locker.Lock(stale.ID().String())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	// Re-read under the lock; a webhook may have landed since the scan.
	aggregate, err := uow.OrderRepository().Get(ctx, stale.ID())
	if err != nil {
		return err
	}
	if aggregate.Status() != order.StatusPendingPayment {
		return uow.Commit(ctx)
	}

	if err = aggregate.Abandon(); err != nil {
		return err
	}
	err = uow.OrderRepository().AttemptTransition(ctx, aggregate,
		[]order.Status{order.StatusPendingPayment})
	if err != nil {
		if errors.Is(err, errs.ErrStaleState) {
			return nil
		}
		return err
	}

	if attempt != nil && attempt.IsOpen() {
		if err = attempt.Resolve(payment.GatewayStatusCanceled); err != nil {
			return err
		}
		if err = uow.PaymentRepository().Update(ctx, attempt); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	notification, err := outbox.NewUserNotification(aggregate.OwnerID(),
		"The order was canceled: the payment did not arrive in time.", now)
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
