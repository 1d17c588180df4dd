// Package shipmentrepo persists shipment requests. The order id primary
// key is what enforces the one shipment per order rule at the database.
package shipmentrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/shipment"
)

// RequestDTO is the database row of a shipment request.
type RequestDTO struct {
	OrderID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	CarrierNumber string
	CarrierUUID   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides GORM's default naming to use "shipment_requests".
func (RequestDTO) TableName() string {
	return "shipment_requests"
}

// fromDomain converts a shipment request to its database representation.
func fromDomain(request *shipment.Request) RequestDTO {
	return RequestDTO{
		OrderID:       request.OrderID(),
		CarrierNumber: request.CarrierNumber(),
		CarrierUUID:   request.CarrierUUID(),
	}
}

// toDomain reconstructs the request from a database row.
func toDomain(dto RequestDTO) *shipment.Request {
	return shipment.RestoreRequest(
		dto.OrderID,
		dto.CarrierNumber,
		dto.CarrierUUID,
		dto.CreatedAt,
	)
}
