package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a short update published by a user. At least one of Text or
// ImageURL must be present; this is enforced by the interaction service.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	// Comments are append-only and keep insertion order.
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
