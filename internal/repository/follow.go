package repository

import (
	"context"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow-graph queries. Edge
// mutations happen inside service-level transactions, not here.
type FollowRepository interface {
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error)
	Counts(ctx context.Context, userID uint) (followers, following int64, err error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	if err = r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&followers).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	if err = r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&following).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return followers, following, nil
}
