package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
)

// NotificationService exposes the recipient's notification inbox.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// List returns the user's notifications and marks them all read. The returned
// snapshot carries the read flags as they were before this call, so clients
// can still render the unread state once.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// Clear deletes every notification addressed to the user.
func (s *NotificationService) Clear(ctx context.Context, userID uint) error {
	return s.notificationRepo.ClearByRecipient(ctx, userID)
}
