package orderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// transitionColumns are the aggregate fields a conditional status update
// writes. Selecting them explicitly makes zero values stick.
var transitionColumns = []string{
	"status", "amount_paid", "track", "extension", "payment_started_at", "updated_at",
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id uuid.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order unconditionally. Status changes go
// through AttemptTransition instead.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select(transitionColumns).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto), nil
}

// GetAllInStatus retrieves all orders in the given status.
func (r *GormOrderRepository) GetAllInStatus(ctx context.Context,
	status order.Status) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).Find(&dtos, "status = ?", status.String()).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, toDomain(dto))
	}

	return orders, nil
}

// GetPendingPaymentOlderThan retrieves orders whose payment window opened
// before the cutoff and never closed.
func (r *GormOrderRepository) GetPendingPaymentOlderThan(ctx context.Context,
	cutoff time.Time) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "status = ? AND payment_started_at < ?",
			order.StatusPendingPayment.String(), cutoff).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, toDomain(dto))
	}

	return orders, nil
}

// AttemptTransition writes the aggregate conditionally: the row updates
// only while its stored status is still one of expectedFrom. Zero rows
// affected means another writer transitioned the order first, reported
// as StaleStateError.
func (r *GormOrderRepository) AttemptTransition(ctx context.Context,
	aggregate *order.Order, expectedFrom []order.Status) error {
	if len(expectedFrom) == 0 {
		return errs.NewValueIsRequiredError("expectedFrom")
	}

	statuses := make([]string, 0, len(expectedFrom))
	for _, s := range expectedFrom {
		statuses = append(statuses, s.String())
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND status IN ?", dto.ID, statuses).
		Select(transitionColumns).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewStaleStateError("order", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}
