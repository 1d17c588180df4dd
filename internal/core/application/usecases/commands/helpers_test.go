package commands_test

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
)

// restoreOrder builds an order in an arbitrary state for handler tests.
func restoreOrder(id uuid.UUID, kind order.PaymentKind, status order.Status,
	amountPaid kernel.Kopeks, track *string) *order.Order {
	startedAt := time.Now().UTC().Add(-time.Hour)
	extension := map[string]string{
		services.ExtensionRecipientName:  "Ivan Petrov",
		services.ExtensionRecipientPhone: "+79990001122",
		services.ExtensionShipmentPoint:  "MSK137",
	}
	return order.RestoreOrder(id, 777, kernel.Kopeks(100_000), kernel.Kopeks(30_000),
		kind, status, amountPaid, track, extension, &startedAt)
}
