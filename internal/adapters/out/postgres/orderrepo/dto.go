// Package orderrepo persists the order aggregate. Besides the usual CRUD
// it owns the conditional status update that arbitrates concurrent
// transitions.
package orderrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderDTO is the database row of an order aggregate. Money columns hold
// kopeks; extension is a JSON bag for gateway ids and recipient data.
type OrderDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID          int64     `gorm:"index"`
	TotalPrice       int64
	DeliveryCost     int64
	AmountPaid       int64
	PaymentKind      string
	Status           string `gorm:"index"`
	Track            *string
	Extension        map[string]string `gorm:"serializer:json;type:jsonb"`
	PaymentStartedAt *time.Time        `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides GORM's default naming to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:               aggregate.ID(),
		OwnerID:          aggregate.OwnerID(),
		TotalPrice:       int64(aggregate.TotalPrice()),
		DeliveryCost:     int64(aggregate.DeliveryCost()),
		AmountPaid:       int64(aggregate.AmountPaid()),
		PaymentKind:      aggregate.PaymentKind().String(),
		Status:           aggregate.Status().String(),
		Track:            aggregate.Track(),
		Extension:        aggregate.Extension(),
		PaymentStartedAt: aggregate.PaymentStartedAt(),
	}
}

// toDomain reconstructs the aggregate from a database row.
func toDomain(dto OrderDTO) *order.Order {
	return order.RestoreOrder(
		dto.ID,
		dto.OwnerID,
		kernel.Kopeks(dto.TotalPrice),
		kernel.Kopeks(dto.DeliveryCost),
		order.PaymentKind(dto.PaymentKind),
		order.Status(dto.Status),
		kernel.Kopeks(dto.AmountPaid),
		dto.Track,
		dto.Extension,
		dto.PaymentStartedAt,
	)
}
