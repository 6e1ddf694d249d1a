package models

import "time"

// NotificationType identifies the interaction that produced a notification.
type NotificationType string

const (
	// NotificationTypeLike is created when a user likes a post.
	NotificationTypeLike NotificationType = "like"
	// NotificationTypeComment is created when a user comments on a post.
	NotificationTypeComment NotificationType = "comment"
	// NotificationTypeFollow is created when a user follows another user.
	NotificationTypeFollow NotificationType = "follow"
)

// Notification records that FromUser performed an interaction directed at
// ToUser. Only the Read flag ever changes after creation; notifications are
// removed solely by the recipient's bulk clear.
type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	FromUserID uint             `gorm:"not null" json:"from_user_id"`
	ToUserID   uint             `gorm:"not null;index" json:"to_user_id"`
	Type       NotificationType `gorm:"type:varchar(16);not null" json:"type"`
	Read       bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt  time.Time        `json:"created_at"`

	// From carries the sending actor's public display fields.
	From User `gorm:"foreignKey:FromUserID" json:"from"`
}
