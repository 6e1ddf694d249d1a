package repository

import (
	"context"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations.
// Notifications are written inside the service-layer transactions that pair
// them with their triggering follow, like, or comment.
type NotificationRepository interface {
	// ListByRecipient returns all notifications addressed to userID with the
	// sending actor preloaded, in the store's natural order (no explicit sort).
	ListByRecipient(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) error
	ClearByRecipient(ctx context.Context, userID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Preload("From").
		Where("to_user_id = ?", userID).
		Find(&notifications).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("to_user_id = ?", userID).
		Update("read", true).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ClearByRecipient(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("to_user_id = ?", userID).
		Delete(&models.Notification{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
