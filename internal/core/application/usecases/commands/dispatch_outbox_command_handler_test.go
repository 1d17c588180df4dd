package commands_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/outbox"
)

func TestNewDispatchOutboxCommand_RejectsNonPositiveBatchSize(t *testing.T) {
	_, err := commands.NewDispatchOutboxCommand(0)
	require.ErrorIs(t, err, commands.ErrBatchSizeIsInvalid)

	_, err = commands.NewDispatchOutboxCommand(-5)
	require.ErrorIs(t, err, commands.ErrBatchSizeIsInvalid)
}

func TestDispatchOutboxCommandHandler_Handle_DeliversAndMarksSent(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewDispatchOutboxCommand(100)
	require.NoError(t, err)

	now := time.Now().UTC()
	notification, err := outbox.NewUserNotification(777, "Payment received", now)
	require.NoError(t, err)
	event, err := outbox.NewStatusEvent("order-1", "paid_full", now)
	require.NoError(t, err)

	outboxRepo := new(MockOutboxRepository)
	outboxRepo.On("GetUnsent", mock.Anything, 100).
		Return([]*outbox.Message{notification, event}, nil).Once()
	outboxRepo.On("Update", mock.Anything, notification).Return(nil).Once()
	outboxRepo.On("Update", mock.Anything, event).Return(nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Times(3)
	uow.On("OutboxRepository").Return(outboxRepo)
	uow.On("Commit", ctx).Return(nil).Times(3)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Times(3)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, int64(777), "Payment received").Return(nil).Once()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, "order-1", event.Payload()).Return(nil).Once()

	h := commands.NewDispatchOutboxCommandHandler(factory, notifier, publisher)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.True(t, notification.IsSent())
	assert.True(t, event.IsSent())
	notifier.AssertExpectations(t)
	publisher.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
}

func TestDispatchOutboxCommandHandler_Handle_FailedDeliveryStaysUnsent(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewDispatchOutboxCommand(100)
	require.NoError(t, err)

	now := time.Now().UTC()
	blocked, err := outbox.NewUserNotification(777, "Order assembled", now)
	require.NoError(t, err)
	event, err := outbox.NewStatusEvent("order-1", "assembled", now)
	require.NoError(t, err)

	outboxRepo := new(MockOutboxRepository)
	outboxRepo.On("GetUnsent", mock.Anything, 100).
		Return([]*outbox.Message{blocked, event}, nil).Once()
	// Only the event gets a delivery mark; the blocked notification must not.
	outboxRepo.On("Update", mock.Anything, event).Return(nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OutboxRepository").Return(outboxRepo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, int64(777), "Order assembled").
		Return(errors.New("bot was blocked by the user")).Once()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, "order-1", event.Payload()).Return(nil).Once()

	h := commands.NewDispatchOutboxCommandHandler(factory, notifier, publisher)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")

	assert.False(t, blocked.IsSent())
	assert.True(t, event.IsSent())
	outboxRepo.AssertExpectations(t)
}

func TestDispatchOutboxCommandHandler_Handle_NothingUnsent(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewDispatchOutboxCommand(100)
	require.NoError(t, err)

	outboxRepo := new(MockOutboxRepository)
	outboxRepo.On("GetUnsent", mock.Anything, 100).Return([]*outbox.Message{}, nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OutboxRepository").Return(outboxRepo)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()

	notifier := new(MockNotifier)
	publisher := new(MockEventPublisher)

	h := commands.NewDispatchOutboxCommandHandler(factory, notifier, publisher)
	require.NoError(t, h.Handle(ctx, cmd))

	notifier.AssertExpectations(t)
	publisher.AssertExpectations(t)
}
