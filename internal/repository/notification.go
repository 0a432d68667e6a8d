package repository

import (
	"context"
	"time"

	"cfp/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for the admin feed.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, limit, offset int) ([]models.Notification, error)
	// MarkRead flips is_read to true. The flip is monotonic, marking an
	// already-read notification is a no-op, not an error.
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context) error
	UnreadCount(ctx context.Context) (int64, error)
	// PurgeRead deletes read notifications older than the cutoff and
	// returns how many rows were removed.
	PurgeRead(ctx context.Context, olderThan time.Time) (int64, error)
	WithTx(tx *gorm.DB) NotificationRepository
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// List returns unread notifications first, newest first within each group.
func (r *notificationRepository) List(ctx context.Context, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.WithContext(ctx).
		Order("is_read ASC, date_creation DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish missing rows from already-read ones
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		if count == 0 {
			return models.NewNotFoundError("Notification", id)
		}
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *notificationRepository) PurgeRead(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND date_creation < ?", true, olderThan).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
