package service

import (
	"fmt"
	"testing"

	"ripple/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hashed",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, text string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: userID, Text: text}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func countNotifications(t *testing.T, db *gorm.DB, toUserID uint, typ models.NotificationType) int64 {
	t.Helper()
	var count int64
	err := db.Model(&models.Notification{}).
		Where("to_user_id = ? AND type = ?", toUserID, typ).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return count
}
