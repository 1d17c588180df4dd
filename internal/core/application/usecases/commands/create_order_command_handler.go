package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
)

// CreateOrderCommandHandler handles order registration.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order registration.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle creates the order in the new status with its recipient data
// attached as extension values.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	aggregate, err := order.NewOrder(cmd.OrderID(), cmd.OwnerID(),
		cmd.TotalPrice(), cmd.DeliveryCost(), cmd.PaymentKind())
	if err != nil {
		return err
	}
	if cmd.RecipientName() != "" {
		aggregate.SetExtension(services.ExtensionRecipientName, cmd.RecipientName())
	}
	if cmd.RecipientPhone() != "" {
		aggregate.SetExtension(services.ExtensionRecipientPhone, cmd.RecipientPhone())
	}
	if cmd.ShipmentPoint() != "" {
		aggregate.SetExtension(services.ExtensionShipmentPoint, cmd.ShipmentPoint())
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
