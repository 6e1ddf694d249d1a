// Package service contains the application's business logic.
package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
	"ripple/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SuggestedUsersLimit caps the random sample returned to the client.
const SuggestedUsersLimit = 4

// GraphService manages the follow graph and profile views.
type GraphService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewGraphService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
) *GraphService {
	return &GraphService{
		db:         db,
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// ToggleFollow flips the follow edge from follower to followee. Returns true
// when the call resulted in a follow, false when it resulted in an unfollow.
// Only the follow direction produces a notification; the edge and its
// notification commit atomically.
func (s *GraphService) ToggleFollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	if followerID == followeeID {
		return false, models.NewValidationError("You can't follow/unfollow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return false, err
	}

	following, err := s.followRepo.IsFollowing(ctx, followerID, followeeID)
	if err != nil {
		return false, err
	}

	if following {
		err := s.db.WithContext(ctx).
			Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Delete(&models.Follow{}).Error
		if err != nil {
			return false, models.NewUpstreamError("unfollow", err)
		}
		return false, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Notification{
			FromUserID: followerID,
			ToUserID:   followeeID,
			Type:       models.NotificationTypeFollow,
		}).Error
	})
	if err != nil {
		return false, models.NewUpstreamError("follow", err)
	}
	observability.NotificationsCreated.WithLabelValues(string(models.NotificationTypeFollow)).Inc()
	return true, nil
}

// SuggestedUsers returns a small random sample of accounts the user does not
// follow yet.
func (s *GraphService) SuggestedUsers(ctx context.Context, userID uint) ([]models.User, error) {
	users, err := s.userRepo.Suggested(ctx, userID, SuggestedUsersLimit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// GetProfile looks up a user by username and attaches follower counts.
func (s *GraphService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	followers, following, err := s.followRepo.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.FollowersCount = followers
	user.FollowingCount = following
	return user, nil
}

// IsFollowing reports whether follower currently follows followee.
func (s *GraphService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followeeID)
}

// UpdateProfileInput carries the editable account fields. Empty strings
// leave the current value in place.
type UpdateProfileInput struct {
	UserID          uint
	Username        string
	Email           string
	Bio             string
	Avatar          string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile edits the user's own account. Changing the password
// requires the current one; username and email changes are validated and
// checked for uniqueness.
func (s *GraphService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if (in.CurrentPassword == "") != (in.NewPassword == "") {
		return nil, models.NewValidationError("Please provide both current password and new password")
	}
	if in.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
			return nil, models.NewValidationError("Current password is incorrect")
		}
		if err := validation.ValidatePassword(in.NewPassword); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if in.Username != "" && in.Username != user.Username {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		existing, err := s.userRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewValidationError("Username is already taken")
		}
		user.Username = in.Username
	}

	if in.Email != "" && in.Email != user.Email {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		existing, err := s.userRepo.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewValidationError("Email is already taken")
		}
		user.Email = in.Email
	}

	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
