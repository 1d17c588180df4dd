package shipmentrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"
)

// GormShipmentRepository implements ShipmentRepository using GORM.
type GormShipmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id uuid.UUID, aggregate any)
}

// NewGormShipmentRepository creates a new GORM shipment request repository.
func NewGormShipmentRepository(db *gorm.DB, tracker aggregateTracker) *GormShipmentRepository {
	return &GormShipmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new shipment request. A second Add for the same order fails
// on the primary key, which is the intended duplicate guard.
func (r *GormShipmentRepository) Add(ctx context.Context, request *shipment.Request) error {
	dto := fromDomain(request)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(request.OrderID(), request)
	return nil
}

// Update saves an existing shipment request.
func (r *GormShipmentRepository) Update(ctx context.Context, request *shipment.Request) error {
	dto := fromDomain(request)
	result := r.db.WithContext(ctx).Model(&RequestDTO{}).
		Where("order_id = ?", dto.OrderID).
		Select("carrier_number", "carrier_uuid", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("shipmentRequest", request.OrderID().String())
	}

	r.tracker.TrackAggregate(request.OrderID(), request)
	return nil
}

// GetByOrder retrieves the shipment request for an order.
func (r *GormShipmentRepository) GetByOrder(ctx context.Context,
	orderID uuid.UUID) (*shipment.Request, error) {
	var dto RequestDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shipmentRequest", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto), nil
}
