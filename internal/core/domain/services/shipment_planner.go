// Package services holds stateless domain services that coordinate more
// than one aggregate.
package services

import (
	"strings"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"
)

// Extension keys the planner reads off the order.
const (
	ExtensionRecipientName  = "recipient_name"
	ExtensionRecipientPhone = "recipient_phone"
	ExtensionShipmentPoint  = "shipment_point"
)

// carrierNumberPrefix plus a slice of the order id forms the carrier order
// number. The number is deterministic per order, so re-planning the same
// order always yields the same shipment identity.
const carrierNumberPrefix = "BOX"

// ShipmentPlanner decides whether an order may ship and assembles the
// carrier snapshot for it.
type ShipmentPlanner interface {
	Plan(o *order.Order) (shipment.Snapshot, error)
}

var _ ShipmentPlanner = &shipmentPlanner{}

type shipmentPlanner struct{}

// NewShipmentPlanner creates the planner.
func NewShipmentPlanner() ShipmentPlanner {
	return &shipmentPlanner{}
}

// Plan validates the shipment preconditions and builds the carrier
// snapshot. An order ships only once it is assembled and fully paid.
func (p *shipmentPlanner) Plan(o *order.Order) (shipment.Snapshot, error) {
	if o == nil {
		return shipment.Snapshot{}, errs.NewValueIsRequiredError("order")
	}
	if o.Status() != order.StatusAssembled {
		return shipment.Snapshot{}, errs.NewValueIsInvalidError("status")
	}
	if !o.FullyPaid() {
		return shipment.Snapshot{}, errs.NewValueIsInvalidError("amountPaid")
	}

	recipientName := o.Extension()[ExtensionRecipientName]
	if recipientName == "" {
		return shipment.Snapshot{}, errs.NewValueIsRequiredError(ExtensionRecipientName)
	}
	recipientPhone := o.Extension()[ExtensionRecipientPhone]
	if recipientPhone == "" {
		return shipment.Snapshot{}, errs.NewValueIsRequiredError(ExtensionRecipientPhone)
	}
	shipmentPoint := o.Extension()[ExtensionShipmentPoint]
	if shipmentPoint == "" {
		return shipment.Snapshot{}, errs.NewValueIsRequiredError(ExtensionShipmentPoint)
	}

	return shipment.Snapshot{
		OrderID:        o.ID(),
		Number:         CarrierNumber(o),
		RecipientName:  recipientName,
		RecipientPhone: recipientPhone,
		ShipmentPoint:  shipmentPoint,
		DeclaredValue:  o.Total(),
	}, nil
}

// CarrierNumber derives the deterministic carrier order number for an order.
func CarrierNumber(o *order.Order) string {
	compact := strings.ReplaceAll(o.ID().String(), "-", "")
	return carrierNumberPrefix + strings.ToUpper(compact[:12])
}
