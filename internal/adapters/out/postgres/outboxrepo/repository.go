package outboxrepo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/pkg/errs"
)

// GormOutboxRepository implements OutboxRepository using GORM.
type GormOutboxRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id uuid.UUID, aggregate any)
}

// NewGormOutboxRepository creates a new GORM outbox repository.
func NewGormOutboxRepository(db *gorm.DB, tracker aggregateTracker) *GormOutboxRepository {
	return &GormOutboxRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new outbox message in the current transaction.
func (r *GormOutboxRepository) Add(ctx context.Context, message *outbox.Message) error {
	dto := fromDomain(message)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(message.ID(), message)
	return nil
}

// Update saves an existing outbox message, typically to stamp sent_at.
func (r *GormOutboxRepository) Update(ctx context.Context, message *outbox.Message) error {
	dto := fromDomain(message)
	result := r.db.WithContext(ctx).Model(&MessageDTO{}).
		Where("id = ?", dto.ID).
		Select("sent_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outboxMessage", message.ID().String())
	}

	r.tracker.TrackAggregate(message.ID(), message)
	return nil
}

// GetUnsent retrieves up to limit undelivered messages, oldest first.
func (r *GormOutboxRepository) GetUnsent(ctx context.Context,
	limit int) ([]*outbox.Message, error) {
	var dtos []MessageDTO
	err := r.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*outbox.Message, 0, len(dtos))
	for _, dto := range dtos {
		messages = append(messages, toDomain(dto))
	}

	return messages, nil
}
