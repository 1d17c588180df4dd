// Package paymentrepo persists payment attempts.
package paymentrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
)

// AttemptDTO is the database row of a payment attempt. GatewayID is
// indexed because webhook lookups come in keyed by it.
type AttemptDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID `gorm:"type:uuid;index"`
	Kind            string
	Amount          int64
	GatewayID       string `gorm:"index"`
	ConfirmationURL string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName overrides GORM's default naming to use "payment_attempts".
func (AttemptDTO) TableName() string {
	return "payment_attempts"
}

// fromDomain converts a payment attempt to its database representation.
func fromDomain(attempt *payment.Attempt) AttemptDTO {
	return AttemptDTO{
		ID:              attempt.ID(),
		OrderID:         attempt.OrderID(),
		Kind:            attempt.Kind().String(),
		Amount:          int64(attempt.Amount()),
		GatewayID:       attempt.GatewayID(),
		ConfirmationURL: attempt.ConfirmationURL(),
		Status:          string(attempt.GatewayStatus()),
	}
}

// toDomain reconstructs the attempt from a database row.
func toDomain(dto AttemptDTO) *payment.Attempt {
	return payment.RestoreAttempt(
		dto.ID,
		dto.OrderID,
		order.PaymentKind(dto.Kind),
		kernel.Kopeks(dto.Amount),
		dto.GatewayID,
		dto.ConfirmationURL,
		payment.GatewayStatus(dto.Status),
		dto.CreatedAt,
	)
}
