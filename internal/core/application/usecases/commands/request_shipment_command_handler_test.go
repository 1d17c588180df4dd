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
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

func TestRequestShipmentCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()
	cmd, err := commands.NewRequestShipmentCommand(orderID)
	require.NoError(t, err)

	aggregate := restoreOrder(orderID, order.PaymentKindFull, order.StatusAssembled,
		kernel.Kopeks(130_000), nil)
	entityUUID := uuid.NewString()

	persisted, err := shipment.NewRequest(orderID, services.CarrierNumber(aggregate), time.Now())
	require.NoError(t, err)

	var addedRequest *shipment.Request
	shipmentRepo := new(MockShipmentRepository)
	shipmentRepo.On("GetByOrder", mock.Anything, orderID).
		Return(nil, errs.NewObjectNotFoundError("shipmentRequest", orderID)).Once()
	shipmentRepo.On("Add", mock.Anything, mock.AnythingOfType("*shipment.Request")).
		Run(func(args mock.Arguments) { addedRequest = args.Get(1).(*shipment.Request) }).
		Return(nil).Once()
	shipmentRepo.On("GetByOrder", mock.Anything, orderID).Return(persisted, nil).Once()
	shipmentRepo.On("Update", mock.Anything, persisted).Return(nil).Once()

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).Return(aggregate, nil).Once()
	orderRepo.On("AttemptTransition", mock.Anything, aggregate,
		[]order.Status{order.StatusAssembled}).Return(nil).Once()

	outboxRepo := new(MockOutboxRepository)
	outboxRepo.On("Add", mock.Anything, mock.Anything).Return(nil).Twice()

	carrier := new(MockShippingCarrier)
	carrier.On("CreateShipment", mock.Anything, mock.MatchedBy(func(s shipment.Snapshot) bool {
		return s.OrderID == orderID && s.RecipientName == "Ivan Petrov" &&
			s.DeclaredValue == kernel.Kopeks(130_000)
	})).Return(ports.CarrierShipment{EntityUUID: entityUUID}, nil).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("ShipmentRepository").Return(shipmentRepo)
	uow.On("OutboxRepository").Return(outboxRepo)

	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewRequestShipmentCommandHandler(factory, carrier,
		services.NewShipmentPlanner(), noopLocker{})
	require.NoError(t, h.Handle(ctx, cmd))

	require.NotNil(t, addedRequest)
	assert.Equal(t, services.CarrierNumber(aggregate), addedRequest.CarrierNumber())
	assert.Equal(t, entityUUID, persisted.CarrierUUID())
	assert.Equal(t, order.StatusShipped, aggregate.Status())
	require.NotNil(t, aggregate.Track())
	assert.Equal(t, entityUUID, *aggregate.Track())
	assert.False(t, aggregate.HasRealTrack())
	carrier.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestRequestShipmentCommandHandler_Handle_AcceptedRequestIsNoOp(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()
	cmd, err := commands.NewRequestShipmentCommand(orderID)
	require.NoError(t, err)

	aggregate := restoreOrder(orderID, order.PaymentKindFull, order.StatusAssembled,
		kernel.Kopeks(130_000), nil)
	existing, err := shipment.NewRequest(orderID, "BOXEXISTING", time.Now())
	require.NoError(t, err)
	require.NoError(t, existing.AttachCarrier(uuid.NewString()))

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).Return(aggregate, nil).Once()

	shipmentRepo := new(MockShipmentRepository)
	shipmentRepo.On("GetByOrder", mock.Anything, orderID).Return(existing, nil).Once()

	carrier := new(MockShippingCarrier)

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("ShipmentRepository").Return(shipmentRepo)

	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewRequestShipmentCommandHandler(factory, carrier,
		services.NewShipmentPlanner(), noopLocker{})
	require.NoError(t, h.Handle(ctx, cmd))

	carrier.AssertNotCalled(t, "CreateShipment", mock.Anything, mock.Anything)
	shipmentRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestRequestShipmentCommandHandler_Handle_CarrierError(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()
	cmd, err := commands.NewRequestShipmentCommand(orderID)
	require.NoError(t, err)

	aggregate := restoreOrder(orderID, order.PaymentKindFull, order.StatusAssembled,
		kernel.Kopeks(130_000), nil)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).Return(aggregate, nil).Once()

	shipmentRepo := new(MockShipmentRepository)
	shipmentRepo.On("GetByOrder", mock.Anything, orderID).
		Return(nil, errs.NewObjectNotFoundError("shipmentRequest", orderID)).Once()
	shipmentRepo.On("Add", mock.Anything, mock.Anything).Return(nil).Once()

	carrier := new(MockShippingCarrier)
	carrier.On("CreateShipment", mock.Anything, mock.Anything).
		Return(ports.CarrierShipment{}, errs.NewCarrierError("create shipment", errors.New("502"))).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("ShipmentRepository").Return(shipmentRepo)

	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewRequestShipmentCommandHandler(factory, carrier,
		services.NewShipmentPlanner(), noopLocker{})
	err = h.Handle(ctx, cmd)

	// The committed request row survives; the next command resumes the
	// carrier call instead of giving up on the order.
	require.ErrorIs(t, err, errs.ErrCarrier)
	assert.Equal(t, order.StatusAssembled, aggregate.Status())
	orderRepo.AssertNotCalled(t, "AttemptTransition", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestShipmentCommandHandler_Handle_ResumesAfterFailedCarrierCall(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()
	cmd, err := commands.NewRequestShipmentCommand(orderID)
	require.NoError(t, err)

	aggregate := restoreOrder(orderID, order.PaymentKindFull, order.StatusAssembled,
		kernel.Kopeks(130_000), nil)
	entityUUID := uuid.NewString()

	// The row a previous attempt left behind when the carrier call died:
	// committed, but without a carrier id.
	orphaned, err := shipment.NewRequest(orderID, services.CarrierNumber(aggregate), time.Now())
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).Return(aggregate, nil).Once()
	orderRepo.On("AttemptTransition", mock.Anything, aggregate,
		[]order.Status{order.StatusAssembled}).Return(nil).Once()

	shipmentRepo := new(MockShipmentRepository)
	shipmentRepo.On("GetByOrder", mock.Anything, orderID).Return(orphaned, nil).Twice()
	shipmentRepo.On("Update", mock.Anything, orphaned).Return(nil).Once()

	carrier := new(MockShippingCarrier)
	carrier.On("CreateShipment", mock.Anything, mock.MatchedBy(func(s shipment.Snapshot) bool {
		return s.Number == orphaned.CarrierNumber()
	})).Return(ports.CarrierShipment{EntityUUID: entityUUID}, nil).Once()

	outboxRepo := new(MockOutboxRepository)
	outboxRepo.On("Add", mock.Anything, mock.Anything).Return(nil).Twice()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("ShipmentRepository").Return(shipmentRepo)
	uow.On("OutboxRepository").Return(outboxRepo)

	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewRequestShipmentCommandHandler(factory, carrier,
		services.NewShipmentPlanner(), noopLocker{})
	require.NoError(t, h.Handle(ctx, cmd))

	// No second row; the orphaned one picks up the carrier id.
	shipmentRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	assert.Equal(t, entityUUID, orphaned.CarrierUUID())
	assert.Equal(t, order.StatusShipped, aggregate.Status())
	carrier.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestRequestShipmentCommandHandler_Handle_RefusesPartiallyPaid(t *testing.T) {
	ctx := t.Context()
	orderID := uuid.New()
	cmd, err := commands.NewRequestShipmentCommand(orderID)
	require.NoError(t, err)

	aggregate := restoreOrder(orderID, order.PaymentKindPrepay, order.StatusAssembled,
		kernel.Kopeks(39_000), nil)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("Get", mock.Anything, orderID).Return(aggregate, nil).Once()

	shipmentRepo := new(MockShipmentRepository)
	shipmentRepo.On("GetByOrder", mock.Anything, orderID).
		Return(nil, errs.NewObjectNotFoundError("shipmentRequest", orderID)).Once()

	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("ShipmentRepository").Return(shipmentRepo)

	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow).Once()

	carrier := new(MockShippingCarrier)
	h := commands.NewRequestShipmentCommandHandler(factory, carrier,
		services.NewShipmentPlanner(), noopLocker{})
	err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	carrier.AssertNotCalled(t, "CreateShipment", mock.Anything, mock.Anything)
}
