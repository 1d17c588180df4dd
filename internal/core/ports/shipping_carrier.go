package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/shipment"
)

// CarrierShipment is the carrier's answer to a created shipment.
type CarrierShipment struct {
	EntityUUID string
}

// CarrierTracking is the carrier's current view of a shipment.
type CarrierTracking struct {
	TrackNumber string
	StatusCode  string
}

// ShippingCarrier is the outbound contract to the delivery provider.
// CreateShipment is not guaranteed idempotent on the carrier side, so
// callers persist the shipment request first and never auto-retry.
type ShippingCarrier interface {
	// CreateShipment registers a parcel with the carrier.
	CreateShipment(ctx context.Context, snapshot shipment.Snapshot) (CarrierShipment, error)

	// GetShipment fetches tracking data by the carrier's entity id.
	GetShipment(ctx context.Context, entityUUID string) (CarrierTracking, error)
}
