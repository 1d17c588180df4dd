package queries

import (
	"errors"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOrdersByStatusQueryIsNotConstructed = errors.New(
		"GetOrdersByStatusQuery must be created via NewGetOrdersByStatusQuery constructor",
	)
	ErrStatusIsInvalid = errors.New("status is not a known order status")
)

// GetOrdersByStatusQuery lists orders sitting in one status, the view an
// operator works from when assembling and shipping.
type GetOrdersByStatusQuery struct {
	status order.Status

	guard guard.ConstructorGuard
}

// NewGetOrdersByStatusQuery creates a query for the given status.
func NewGetOrdersByStatusQuery(status string) (GetOrdersByStatusQuery, error) {
	s := order.Status(status)
	if !s.IsValid() {
		return GetOrdersByStatusQuery{}, ErrStatusIsInvalid
	}
	return GetOrdersByStatusQuery{
		status: s,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrdersByStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrdersByStatusQueryIsNotConstructed)
}

// Status returns the status being listed.
func (q GetOrdersByStatusQuery) Status() order.Status {
	return q.status
}

// GetOrdersByStatusQueryResponse is one row of the status listing.
type GetOrdersByStatusQueryResponse struct {
	ID               uuid.UUID
	OwnerID          int64
	TotalPriceKopeks int64
	AmountPaidKopeks int64
	Track            *string
}
