package commands_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

func TestStartPaymentCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()
	cmd, err := commands.NewStartPaymentCommand(orderID, "full")
	require.NoError(t, err)

	aggregate := restoreOrder(orderID, order.PaymentKindFull, order.StatusNew, 0, nil)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).Return(aggregate, nil).Once()
	orderRepo.On("AttemptTransition", mock.Anything, aggregate,
		[]order.Status{order.StatusNew, order.StatusPendingPayment}).Return(nil).Once()

	paymentRepo := new(MockPaymentRepository)
	paymentRepo.On("GetOpenByOrderAndKind", mock.Anything, orderID, order.PaymentKindFull).
		Return(nil, errs.NewObjectNotFoundError("paymentAttempt", orderID)).Once()
	var addedAttempt *payment.Attempt
	paymentRepo.On("Add", mock.Anything, mock.AnythingOfType("*payment.Attempt")).
		Run(func(args mock.Arguments) { addedAttempt = args.Get(1).(*payment.Attempt) }).
		Return(nil).Once()

	outboxRepo := new(MockOutboxRepository)
	outboxRepo.On("Add", mock.Anything, mock.Anything).Return(nil).Once()

	gateway := new(MockPaymentGateway)
	gateway.On("CreateIntent", mock.Anything, mock.MatchedBy(func(r ports.IntentRequest) bool {
		return r.Amount == kernel.Kopeks(130_000) && r.OrderID == orderID.String() &&
			r.PaymentKind == "full" && r.IdempotenceKey != ""
	})).Return(ports.Intent{GatewayID: "pi_123", ConfirmationURL: "https://pay.example/pi_123"}, nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("PaymentRepository").Return(paymentRepo)
	uow.On("OutboxRepository").Return(outboxRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewStartPaymentCommandHandler(factory, gateway, noopLocker{}, "https://shop.example/return")
	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/pi_123", result.ConfirmationURL)
	require.NotNil(t, addedAttempt)
	assert.Equal(t, "pi_123", addedAttempt.GatewayID())
	assert.Equal(t, order.StatusPendingPayment, aggregate.Status())
	gateway.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestStartPaymentCommandHandler_Handle_ReusesOpenIntent(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()
	cmd, err := commands.NewStartPaymentCommand(orderID, "prepay")
	require.NoError(t, err)

	aggregate := restoreOrder(orderID, order.PaymentKindPrepay, order.StatusPendingPayment, 0, nil)

	open, err := payment.NewAttempt(orderID, order.PaymentKindPrepay, kernel.Kopeks(39_000), time.Now())
	require.NoError(t, err)
	require.NoError(t, open.AttachGateway("pi_open", "https://pay.example/pi_open"))

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).Return(aggregate, nil).Once()

	paymentRepo := new(MockPaymentRepository)
	paymentRepo.On("GetOpenByOrderAndKind", mock.Anything, orderID, order.PaymentKindPrepay).
		Return(open, nil).Once()

	gateway := new(MockPaymentGateway)

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("PaymentRepository").Return(paymentRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewStartPaymentCommandHandler(factory, gateway, noopLocker{}, "")
	result, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, open.ID(), result.AttemptID)
	assert.Equal(t, "https://pay.example/pi_open", result.ConfirmationURL)
	gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
	paymentRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestStartPaymentCommandHandler_Handle_GatewayError(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()
	cmd, err := commands.NewStartPaymentCommand(orderID, "full")
	require.NoError(t, err)

	aggregate := restoreOrder(orderID, order.PaymentKindFull, order.StatusNew, 0, nil)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).Return(aggregate, nil).Once()

	paymentRepo := new(MockPaymentRepository)
	paymentRepo.On("GetOpenByOrderAndKind", mock.Anything, orderID, order.PaymentKindFull).
		Return(nil, errs.NewObjectNotFoundError("paymentAttempt", orderID)).Once()

	gateway := new(MockPaymentGateway)
	gateway.On("CreateIntent", mock.Anything, mock.Anything).
		Return(ports.Intent{}, errs.NewGatewayError("create intent", errors.New("timeout"))).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("PaymentRepository").Return(paymentRepo)
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewStartPaymentCommandHandler(factory, gateway, noopLocker{}, "")
	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrGateway)
	paymentRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestStartPaymentCommandHandler_Handle_KindMismatch(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()
	cmd, err := commands.NewStartPaymentCommand(orderID, "prepay")
	require.NoError(t, err)

	aggregate := restoreOrder(orderID, order.PaymentKindFull, order.StatusNew, 0, nil)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).Return(aggregate, nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewStartPaymentCommandHandler(factory, new(MockPaymentGateway), noopLocker{}, "")
	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStartPaymentCommandHandler_Handle_RemainderNeedsAssembledOrder(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()
	cmd, err := commands.NewStartPaymentCommand(orderID, "remainder")
	require.NoError(t, err)

	aggregate := restoreOrder(orderID, order.PaymentKindPrepay, order.StatusPendingPayment, 0, nil)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).Return(aggregate, nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockPaymentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewStartPaymentCommandHandler(factory, new(MockPaymentGateway), noopLocker{}, "")
	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrStaleState)
}
