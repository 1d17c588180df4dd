package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// PollShipmentsCommandHandler walks shipped orders and pulls fresh
// tracking data from the carrier. A real tracking number replacing the
// placeholder is announced to the buyer once; carrier status changes are
// announced once each, deduplicated through the status cache. The poller
// never archives anything on its own.
type PollShipmentsCommandHandler struct {
	uowFactory  ShipmentUoWFactory
	carrier     ports.ShippingCarrier
	statusCache ports.StatusCache
	locker      OrderLocker
}

// NewPollShipmentsCommandHandler creates the poller handler.
func NewPollShipmentsCommandHandler(uowFactory ShipmentUoWFactory,
	carrier ports.ShippingCarrier, statusCache ports.StatusCache,
	locker OrderLocker) PollShipmentsCommandHandler {
	return PollShipmentsCommandHandler{
		uowFactory:  uowFactory,
		carrier:     carrier,
		statusCache: statusCache,
		locker:      locker,
	}
}

// Handle runs one tracking pass. Each order is handled in isolation; the
// first error is returned after the pass finishes.
func (h *PollShipmentsCommandHandler) Handle(ctx context.Context, cmd PollShipmentsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	shipped, err := h.shippedOrders(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	for _, aggregate := range shipped {
		if err = h.pollOne(ctx, aggregate); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *PollShipmentsCommandHandler) shippedOrders(ctx context.Context) ([]*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	shipped, err := uow.OrderRepository().GetAllInStatus(ctx, order.StatusShipped)
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return shipped, nil
}

func (h *PollShipmentsCommandHandler) pollOne(ctx context.Context, stale *order.Order) error {
	unlock := h.locker.Lock(stale.ID().String())
	defer unlock()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, stale.ID())
	if err != nil {
		return err
	}
	if aggregate.Status() != order.StatusShipped {
		return uow.Commit(ctx)
	}

	request, err := uow.ShipmentRepository().GetByOrder(ctx, aggregate.ID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return uow.Commit(ctx)
		}
		return err
	}

	tracking, err := h.carrier.GetShipment(ctx, request.CarrierUUID())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	trackChanged := false

	if tracking.TrackNumber != "" && !aggregate.HasRealTrack() {
		if err = aggregate.SetTrack(tracking.TrackNumber); err != nil {
			return err
		}
		notification, nErr := outbox.NewUserNotification(aggregate.OwnerID(),
			fmt.Sprintf("Your tracking number: %s", tracking.TrackNumber), now)
		if nErr != nil {
			return nErr
		}
		if err = uow.OutboxRepository().Add(ctx, notification); err != nil {
			return err
		}
		trackChanged = true
	}

	// A carrier status change touches only the dedupe cache; the
	// aggregate is written back only when the track itself changed.
	if tracking.StatusCode != "" {
		last, cacheErr := h.statusCache.GetLastStatus(ctx, aggregate.ID().String())
		if cacheErr != nil {
			return cacheErr
		}
		if last != tracking.StatusCode {
			notification, nErr := outbox.NewUserNotification(aggregate.OwnerID(),
				fmt.Sprintf("Delivery update: %s", tracking.StatusCode), now)
			if nErr != nil {
				return nErr
			}
			if err = uow.OutboxRepository().Add(ctx, notification); err != nil {
				return err
			}
			if err = h.statusCache.SetLastStatus(ctx, aggregate.ID().String(), tracking.StatusCode); err != nil {
				return err
			}
		}
	}

	if trackChanged {
		if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
			return err
		}
	}
	return uow.Commit(ctx)
}
