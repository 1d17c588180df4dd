package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// StartPaymentResult is what the buyer needs to proceed with a started
// payment attempt.
type StartPaymentResult struct {
	AttemptID       uuid.UUID
	ConfirmationURL string
}

// StartPaymentCommandHandler opens a payment intent at the gateway and
// moves the order into pending_payment. When an open attempt of the same
// kind already carries a gateway intent, that intent is reused instead of
// charging the buyer a second time.
type StartPaymentCommandHandler struct {
	uowFactory PaymentUoWFactory
	gateway    ports.PaymentGateway
	locker     OrderLocker
	returnURL  string
}

// NewStartPaymentCommandHandler creates a handler for starting payments.
func NewStartPaymentCommandHandler(uowFactory PaymentUoWFactory,
	gateway ports.PaymentGateway, locker OrderLocker, returnURL string) StartPaymentCommandHandler {
	return StartPaymentCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		locker:     locker,
		returnURL:  returnURL,
	}
}

// Handle processes the start payment command.
func (h *StartPaymentCommandHandler) Handle(ctx context.Context,
	cmd StartPaymentCommand) (StartPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return StartPaymentResult{}, err
	}

	unlock := h.locker.Lock(cmd.OrderID().String())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return StartPaymentResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return StartPaymentResult{}, err
	}

	if err = h.checkKindAllowed(aggregate, cmd.Kind()); err != nil {
		return StartPaymentResult{}, err
	}

	// Reuse an open intent instead of creating a duplicate charge.
	open, err := uow.PaymentRepository().GetOpenByOrderAndKind(ctx, cmd.OrderID(), cmd.Kind())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return StartPaymentResult{}, err
	}
	if open != nil && open.GatewayID() != "" {
		if err = uow.Commit(ctx); err != nil {
			return StartPaymentResult{}, err
		}
		return StartPaymentResult{
			AttemptID:       open.ID(),
			ConfirmationURL: open.ConfirmationURL(),
		}, nil
	}

	now := time.Now().UTC()
	attempt, err := payment.NewAttempt(cmd.OrderID(), cmd.Kind(), amountFor(aggregate, cmd.Kind()), now)
	if err != nil {
		return StartPaymentResult{}, err
	}

	intent, err := h.gateway.CreateIntent(ctx, ports.IntentRequest{
		IdempotenceKey: attempt.ID().String(),
		Amount:         attempt.Amount(),
		Description:    fmt.Sprintf("Order %s, %s payment", cmd.OrderID(), cmd.Kind()),
		OrderID:        cmd.OrderID().String(),
		PaymentKind:    cmd.Kind().String(),
		ReturnURL:      h.returnURL,
	})
	if err != nil {
		return StartPaymentResult{}, err
	}

	if err = attempt.AttachGateway(intent.GatewayID, intent.ConfirmationURL); err != nil {
		return StartPaymentResult{}, err
	}
	if err = uow.PaymentRepository().Add(ctx, attempt); err != nil {
		return StartPaymentResult{}, err
	}

	// The remainder is paid while the order sits in assembled; only the
	// initial payment moves the order into pending_payment.
	if cmd.Kind() != order.PaymentKindRemainder {
		if err = aggregate.StartPayment(now); err != nil {
			return StartPaymentResult{}, err
		}
		err = uow.OrderRepository().AttemptTransition(ctx, aggregate,
			[]order.Status{order.StatusNew, order.StatusPendingPayment})
		if err != nil {
			return StartPaymentResult{}, err
		}
	}

	notification, err := outbox.NewUserNotification(aggregate.OwnerID(),
		fmt.Sprintf("Your payment link: %s", intent.ConfirmationURL), now)
	if err != nil {
		return StartPaymentResult{}, err
	}
	if err = uow.OutboxRepository().Add(ctx, notification); err != nil {
		return StartPaymentResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return StartPaymentResult{}, err
	}

	return StartPaymentResult{
		AttemptID:       attempt.ID(),
		ConfirmationURL: intent.ConfirmationURL,
	}, nil
}

func (h *StartPaymentCommandHandler) checkKindAllowed(aggregate *order.Order,
	kind order.PaymentKind) error {
	switch kind {
	case order.PaymentKindRemainder:
		if aggregate.Status() != order.StatusAssembled || aggregate.FullyPaid() {
			return errs.NewStaleStateError("order", aggregate.ID().String())
		}
	default:
		if kind != aggregate.PaymentKind() {
			return errs.NewValueIsInvalidError("paymentKind")
		}
		if aggregate.Status() != order.StatusNew && aggregate.Status() != order.StatusPendingPayment {
			return errs.NewStaleStateError("order", aggregate.ID().String())
		}
	}
	return nil
}

// amountFor derives the charge amount of an attempt from its kind.
func amountFor(aggregate *order.Order, kind order.PaymentKind) kernel.Kopeks {
	switch kind {
	case order.PaymentKindPrepay:
		return aggregate.Total().PrepayShare()
	case order.PaymentKindRemainder:
		return aggregate.Total().Remainder()
	default:
		return aggregate.Total()
	}
}
