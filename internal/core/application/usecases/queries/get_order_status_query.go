// Package queries contains read-only operations. Query handlers go
// straight to the database with raw SQL and bypass the aggregate
// repositories, per the CQRS split.
package queries

import (
	"errors"

	"github.com/google/uuid"

	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOrderStatusQueryIsNotConstructed = errors.New(
		"GetOrderStatusQuery must be created via NewGetOrderStatusQuery constructor",
	)
	ErrOrderIDIsRequired = errors.New("order id is required")
)

// GetOrderStatusQuery retrieves the current state of one order.
type GetOrderStatusQuery struct {
	orderID uuid.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderStatusQuery creates a query for the given order.
func NewGetOrderStatusQuery(orderID uuid.UUID) (GetOrderStatusQuery, error) {
	if orderID == uuid.Nil {
		return GetOrderStatusQuery{}, ErrOrderIDIsRequired
	}
	return GetOrderStatusQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusQueryIsNotConstructed)
}

// OrderID returns the order identifier.
func (q GetOrderStatusQuery) OrderID() uuid.UUID {
	return q.orderID
}

// GetOrderStatusQueryResponse is the read model of one order.
type GetOrderStatusQueryResponse struct {
	ID                 uuid.UUID
	OwnerID            int64
	Status             string
	PaymentKind        string
	TotalPriceKopeks   int64
	DeliveryCostKopeks int64
	AmountPaidKopeks   int64
	Track              *string
}
