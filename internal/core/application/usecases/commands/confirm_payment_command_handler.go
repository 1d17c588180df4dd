package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
)

// ExtensionGatewayPaymentID is where the id of the succeeded gateway
// payment lands on the order.
const ExtensionGatewayPaymentID = "gateway_payment_id"

// ConfirmPaymentCommandHandler applies a gateway payment outcome to the
// order. It is the single choke point shared by the webhook and the
// sweeper: whichever of the two reports first wins the conditional status
// update, the other resolves to a no-op. The buyer notification is written
// to the outbox in the same transaction, so it goes out exactly when the
// winning transition commits.
type ConfirmPaymentCommandHandler struct {
	uowFactory PaymentUoWFactory
	locker     OrderLocker
}

// NewConfirmPaymentCommandHandler creates a handler for payment confirmations.
func NewConfirmPaymentCommandHandler(uowFactory PaymentUoWFactory,
	locker OrderLocker) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		uowFactory: uowFactory,
		locker:     locker,
	}
}

// Handle processes the confirmation. Replays and lost races return nil:
// the state the confirmation wanted is already there.
func (h *ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) error {
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

	if aggregate.Status().IsPaymentTerminal() {
		return uow.Commit(ctx)
	}

	attempt, err := uow.PaymentRepository().GetByGatewayID(ctx, cmd.GatewayID())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	switch cmd.GatewayStatus() {
	case payment.GatewayStatusSucceeded:
		return h.applySuccess(ctx, uow, cmd, aggregate, attempt)
	case payment.GatewayStatusFailed, payment.GatewayStatusCanceled:
		if attempt == nil {
			return uow.Commit(ctx)
		}
		if err = attempt.Resolve(cmd.GatewayStatus()); err != nil {
			if errors.Is(err, errs.ErrStaleState) {
				return uow.Commit(ctx)
			}
			return err
		}
		if err = uow.PaymentRepository().Update(ctx, attempt); err != nil {
			return err
		}
		return uow.Commit(ctx)
	default:
		// Still pending at the gateway, nothing to apply.
		return uow.Commit(ctx)
	}
}

func (h *ConfirmPaymentCommandHandler) applySuccess(ctx context.Context, uow PaymentUoW,
	cmd ConfirmPaymentCommand, aggregate *order.Order, attempt *payment.Attempt) error {
	now := time.Now().UTC()

	amount := amountFor(aggregate, cmd.Kind())
	if attempt != nil {
		amount = attempt.Amount()
		if err := attempt.Resolve(payment.GatewayStatusSucceeded); err != nil {
			if errors.Is(err, errs.ErrStaleState) {
				return uow.Commit(ctx)
			}
			return err
		}
		if err := uow.PaymentRepository().Update(ctx, attempt); err != nil {
			return err
		}
	}

	if err := aggregate.MarkPaid(cmd.Kind(), amount); err != nil {
		if errors.Is(err, errs.ErrStaleState) {
			return nil
		}
		return err
	}
	aggregate.SetExtension(ExtensionGatewayPaymentID, cmd.GatewayID())

	err := uow.OrderRepository().AttemptTransition(ctx, aggregate, cmd.Kind().ExpectedFrom())
	if err != nil {
		// Lost the race: the other reporter already moved the order.
		if errors.Is(err, errs.ErrStaleState) {
			return nil
		}
		return err
	}

	notification, err := outbox.NewUserNotification(aggregate.OwnerID(),
		paymentReceivedText(cmd.Kind()), now)
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

func paymentReceivedText(kind order.PaymentKind) string {
	switch kind {
	case order.PaymentKindPrepay:
		return "Prepayment received, the order went to assembly."
	case order.PaymentKindRemainder:
		return "Remaining payment received, the order is fully paid."
	default:
		return fmt.Sprintf("Payment received, the order is %s.", order.StatusPaidFull)
	}
}
