package shipment

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Request records that a carrier shipment was created for an order. It is
// keyed by order id: at most one shipment per order ever exists, which is
// what makes a second shipment call a cheap no-op instead of a duplicate
// parcel.
type Request struct {
	orderID       uuid.UUID
	carrierNumber string
	carrierUUID   string
	createdAt     time.Time
}

// NewRequest creates a shipment request for the given order.
func NewRequest(orderID uuid.UUID, carrierNumber string, now time.Time) (*Request, error) {
	if orderID == uuid.Nil {
		return nil, errs.NewValueIsRequiredError("orderId")
	}
	if carrierNumber == "" {
		return nil, errs.NewValueIsRequiredError("carrierNumber")
	}
	return &Request{
		orderID:       orderID,
		carrierNumber: carrierNumber,
		createdAt:     now,
	}, nil
}

// RestoreRequest reconstructs a request from persistence without validation.
func RestoreRequest(orderID uuid.UUID, carrierNumber, carrierUUID string,
	createdAt time.Time) *Request {
	return &Request{
		orderID:       orderID,
		carrierNumber: carrierNumber,
		carrierUUID:   carrierUUID,
		createdAt:     createdAt,
	}
}

func (r *Request) OrderID() uuid.UUID    { return r.orderID }
func (r *Request) CarrierNumber() string { return r.carrierNumber }
func (r *Request) CarrierUUID() string   { return r.carrierUUID }
func (r *Request) CreatedAt() time.Time  { return r.createdAt }

// AttachCarrier records the carrier's internal entity id for the shipment.
func (r *Request) AttachCarrier(carrierUUID string) error {
	if carrierUUID == "" {
		return errs.NewValueIsRequiredError("carrierUuid")
	}
	r.carrierUUID = carrierUUID
	return nil
}

// Snapshot is everything the carrier needs to create the shipment.
type Snapshot struct {
	OrderID        uuid.UUID
	Number         string
	RecipientName  string
	RecipientPhone string
	ShipmentPoint  string
	DeclaredValue  kernel.Kopeks
}
