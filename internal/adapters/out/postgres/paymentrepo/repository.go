package paymentrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
)

// GormPaymentRepository implements PaymentRepository using GORM.
type GormPaymentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id uuid.UUID, aggregate any)
}

// NewGormPaymentRepository creates a new GORM payment attempt repository.
func NewGormPaymentRepository(db *gorm.DB, tracker aggregateTracker) *GormPaymentRepository {
	return &GormPaymentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new payment attempt to the database.
func (r *GormPaymentRepository) Add(ctx context.Context, attempt *payment.Attempt) error {
	dto := fromDomain(attempt)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(attempt.ID(), attempt)
	return nil
}

// Update saves an existing payment attempt.
func (r *GormPaymentRepository) Update(ctx context.Context, attempt *payment.Attempt) error {
	dto := fromDomain(attempt)
	result := r.db.WithContext(ctx).Model(&AttemptDTO{}).
		Where("id = ?", dto.ID).
		Select("gateway_id", "confirmation_url", "status", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("paymentAttempt", attempt.ID().String())
	}

	r.tracker.TrackAggregate(attempt.ID(), attempt)
	return nil
}

// Get retrieves a payment attempt by ID.
func (r *GormPaymentRepository) Get(ctx context.Context, id uuid.UUID) (*payment.Attempt, error) {
	var dto AttemptDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("paymentAttempt", id.String())
		}
		return nil, err
	}

	return toDomain(dto), nil
}

// GetOpenByOrderAndKind retrieves the pending attempt for an order and
// payment kind, if one exists. Used to reuse an intent instead of minting
// a duplicate at the gateway.
func (r *GormPaymentRepository) GetOpenByOrderAndKind(ctx context.Context,
	orderID uuid.UUID, kind order.PaymentKind) (*payment.Attempt, error) {
	var dto AttemptDTO
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&dto, "order_id = ? AND kind = ? AND status = ?",
			orderID, kind.String(), string(payment.GatewayStatusPending)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("paymentAttempt", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto), nil
}

// GetByGatewayID retrieves the attempt matching a gateway payment id.
func (r *GormPaymentRepository) GetByGatewayID(ctx context.Context,
	gatewayID string) (*payment.Attempt, error) {
	var dto AttemptDTO
	if err := r.db.WithContext(ctx).First(&dto, "gateway_id = ?", gatewayID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("paymentAttempt", gatewayID)
		}
		return nil, err
	}

	return toDomain(dto), nil
}
