package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RequestShipmentCommandHandler creates the carrier shipment for an order.
// The shipment request row is persisted before the carrier call as the
// at-most-once guard. A repeated command for an order the carrier already
// accepted is a no-op; a row left behind by a failed call makes the retry
// resume the carrier call with the same business number, which the
// carrier deduplicates.
type RequestShipmentCommandHandler struct {
	uowFactory ShipmentUoWFactory
	carrier    ports.ShippingCarrier
	planner    services.ShipmentPlanner
	locker     OrderLocker
}

// NewRequestShipmentCommandHandler creates a handler for shipment requests.
func NewRequestShipmentCommandHandler(uowFactory ShipmentUoWFactory,
	carrier ports.ShippingCarrier, planner services.ShipmentPlanner,
	locker OrderLocker) RequestShipmentCommandHandler {
	return RequestShipmentCommandHandler{
		uowFactory: uowFactory,
		carrier:    carrier,
		planner:    planner,
		locker:     locker,
	}
}

// Handle processes the shipment request.
func (h *RequestShipmentCommandHandler) Handle(ctx context.Context, cmd RequestShipmentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	unlock := h.locker.Lock(cmd.OrderID().String())
	defer unlock()

	aggregate, snapshot, accepted, err := h.planShipment(ctx, cmd)
	if err != nil || accepted {
		return err
	}

	// The carrier call happens outside any transaction; the request row
	// is already committed as the at-most-once guard.
	created, err := h.carrier.CreateShipment(ctx, snapshot)
	if err != nil {
		return err
	}

	return h.recordShipment(ctx, aggregate, created)
}

// planShipment validates preconditions and commits the shipment request
// row. The accepted flag short-circuits the whole command when the
// carrier already accepted the order.
func (h *RequestShipmentCommandHandler) planShipment(ctx context.Context,
	cmd RequestShipmentCommand) (*order.Order, shipment.Snapshot, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, shipment.Snapshot{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, shipment.Snapshot{}, false, err
	}

	existing, err := uow.ShipmentRepository().GetByOrder(ctx, cmd.OrderID())
	if err == nil {
		if existing.CarrierUUID() != "" {
			return nil, shipment.Snapshot{}, true, uow.Commit(ctx)
		}
		// A row without a carrier id is an earlier call that died in
		// flight. The snapshot number is deterministic per order and the
		// carrier deduplicates by it, so resubmitting cannot produce a
		// second parcel.
		snapshot, planErr := h.planner.Plan(aggregate)
		if planErr != nil {
			return nil, shipment.Snapshot{}, false, planErr
		}
		return aggregate, snapshot, false, uow.Commit(ctx)
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, shipment.Snapshot{}, false, err
	}

	snapshot, err := h.planner.Plan(aggregate)
	if err != nil {
		return nil, shipment.Snapshot{}, false, err
	}

	request, err := shipment.NewRequest(cmd.OrderID(), snapshot.Number, time.Now().UTC())
	if err != nil {
		return nil, shipment.Snapshot{}, false, err
	}
	if err = uow.ShipmentRepository().Add(ctx, request); err != nil {
		return nil, shipment.Snapshot{}, false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, shipment.Snapshot{}, false, err
	}
	return aggregate, snapshot, false, nil
}

// recordShipment attaches the carrier's entity id and flips the order to
// shipped, with the carrier id standing in as the track until the poller
// learns the real number.
func (h *RequestShipmentCommandHandler) recordShipment(ctx context.Context,
	aggregate *order.Order, created ports.CarrierShipment) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	request, err := uow.ShipmentRepository().GetByOrder(ctx, aggregate.ID())
	if err != nil {
		return err
	}
	if err = request.AttachCarrier(created.EntityUUID); err != nil {
		return err
	}
	if err = uow.ShipmentRepository().Update(ctx, request); err != nil {
		return err
	}

	if err = aggregate.MarkShipped(created.EntityUUID); err != nil {
		return err
	}
	err = uow.OrderRepository().AttemptTransition(ctx, aggregate,
		[]order.Status{order.StatusAssembled})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	notification, err := outbox.NewUserNotification(aggregate.OwnerID(),
		"Your order was handed to the carrier. The tracking number will follow.", now)
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
