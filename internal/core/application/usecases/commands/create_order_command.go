package commands

import (
	"errors"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrOrderIDIsRequired   = errors.New("order id is required")
	ErrOwnerIDIsRequired   = errors.New("owner id is required")
	ErrTotalPriceIsInvalid = errors.New("total price must be greater than 0")
)

// CreateOrderCommand represents a request to register a new order together
// with the recipient data the carrier will later need.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        uuid.UUID
	ownerID        int64
	totalPrice     kernel.Kopeks
	deliveryCost   kernel.Kopeks
	paymentKind    order.PaymentKind
	recipientName  string
	recipientPhone string
	shipmentPoint  string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order.
// Validates identifiers, amounts and the payment kind.
func NewCreateOrderCommand(orderID uuid.UUID, ownerID int64,
	totalPriceKopeks, deliveryCostKopeks int64, paymentKind string,
	recipientName, recipientPhone, shipmentPoint string) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if orderID == uuid.Nil {
		return CreateOrderCommand{}, ErrOrderIDIsRequired
	}
	if ownerID == 0 {
		return CreateOrderCommand{}, ErrOwnerIDIsRequired
	}
	if totalPriceKopeks <= 0 {
		return CreateOrderCommand{}, ErrTotalPriceIsInvalid
	}

	totalPrice, err := kernel.NewKopeks(totalPriceKopeks)
	if err != nil {
		return CreateOrderCommand{}, err
	}
	deliveryCost, err := kernel.NewKopeks(deliveryCostKopeks)
	if err != nil {
		return CreateOrderCommand{}, err
	}
	kind, err := order.NewPaymentKind(paymentKind)
	if err != nil {
		return CreateOrderCommand{}, err
	}

	cmd.orderID = orderID
	cmd.ownerID = ownerID
	cmd.totalPrice = totalPrice
	cmd.deliveryCost = deliveryCost
	cmd.paymentKind = kind
	cmd.recipientName = recipientName
	cmd.recipientPhone = recipientPhone
	cmd.shipmentPoint = shipmentPoint

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() uuid.UUID           { return c.orderID }
func (c CreateOrderCommand) OwnerID() int64               { return c.ownerID }
func (c CreateOrderCommand) TotalPrice() kernel.Kopeks    { return c.totalPrice }
func (c CreateOrderCommand) DeliveryCost() kernel.Kopeks  { return c.deliveryCost }
func (c CreateOrderCommand) PaymentKind() order.PaymentKind { return c.paymentKind }
func (c CreateOrderCommand) RecipientName() string        { return c.recipientName }
func (c CreateOrderCommand) RecipientPhone() string       { return c.recipientPhone }
func (c CreateOrderCommand) ShipmentPoint() string        { return c.shipmentPoint }
