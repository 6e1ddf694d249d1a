package service

import (
	"context"
	"log/slog"
	"strings"

	"ripple/internal/assets"
	"ripple/internal/cache"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"gorm.io/gorm"
)

// InteractionService handles post authorship and the per-post interactions
// (likes and comments) together with the notifications they fan out.
type InteractionService struct {
	db         *gorm.DB
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	assetStore assets.Store
}

type CreatePostInput struct {
	UserID    uint
	Text      string
	ImageData []byte
}

type CommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

func NewInteractionService(
	db *gorm.DB,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	assetStore assets.Store,
) *InteractionService {
	return &InteractionService{
		db:         db,
		postRepo:   postRepo,
		userRepo:   userRepo,
		assetStore: assetStore,
	}
}

// CreatePost publishes a post for the user. When image data is present it is
// uploaded to the asset store first; the post then references the returned
// URL. A post needs text or an image (or both).
func (s *InteractionService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	if text == "" && len(in.ImageData) == 0 {
		return nil, models.NewValidationError("Post must have text or image")
	}

	var imageURL string
	if len(in.ImageData) > 0 {
		url, err := s.assetStore.Upload(ctx, in.ImageData)
		if err != nil {
			observability.AssetStoreErrors.WithLabelValues("upload").Inc()
			return nil, models.NewUpstreamError("image upload", err)
		}
		imageURL = url
	}

	post := &models.Post{
		UserID:   in.UserID,
		Text:     text,
		ImageURL: imageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// DeletePost removes the user's own post. The stored image, if any, is
// destroyed best-effort before the post row goes away.
func (s *InteractionService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewUnauthorizedError("You are not authorized to delete this post")
	}

	if post.ImageURL != "" {
		assetID := assets.AssetIDFromURL(post.ImageURL)
		if err := s.assetStore.Destroy(ctx, assetID); err != nil {
			observability.AssetStoreErrors.WithLabelValues("destroy").Inc()
			middleware.Logger.Warn("failed to destroy post image",
				slog.Uint64("post_id", uint64(postID)),
				slog.String("asset_id", assetID),
				slog.String("error", err.Error()))
		}
	}

	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike flips the user's like on a post and returns the refreshed post.
// Liking notifies the post owner, including when users like their own posts;
// unliking never notifies. The like and its notification commit atomically.
func (s *InteractionService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if liked {
		err := s.db.WithContext(ctx).
			Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(&models.Like{}).Error
		if err != nil {
			return nil, models.NewUpstreamError("unlike", err)
		}
	} else {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
				return err
			}
			return tx.Create(&models.Notification{
				FromUserID: userID,
				ToUserID:   post.UserID,
				Type:       models.NotificationTypeLike,
			}).Error
		})
		if err != nil {
			return nil, models.NewUpstreamError("like", err)
		}
		observability.NotificationsCreated.WithLabelValues(string(models.NotificationTypeLike)).Inc()
	}

	cache.InvalidatePost(ctx, postID)
	cache.InvalidateGlobalFeed(ctx)
	return s.postRepo.GetByID(ctx, postID, userID)
}

// Comment appends a comment to a post and notifies the post owner, including
// for self-comments. The notification is written before the comment within
// one transaction, so a comment never exists without its notification.
func (s *InteractionService) Comment(ctx context.Context, in CommentInput) (*models.Post, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("Text field is required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Notification{
			FromUserID: in.UserID,
			ToUserID:   post.UserID,
			Type:       models.NotificationTypeComment,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Comment{
			UserID: in.UserID,
			PostID: in.PostID,
			Text:   in.Text,
		}).Error
	})
	if err != nil {
		return nil, models.NewUpstreamError("comment", err)
	}
	observability.NotificationsCreated.WithLabelValues(string(models.NotificationTypeComment)).Inc()

	cache.InvalidatePost(ctx, in.PostID)
	cache.InvalidateGlobalFeed(ctx)
	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

// GetPost returns a single post with counts computed for the viewer. The
// anonymous view is served cache-aside; per-viewer views skip the cache
// because the liked flag is viewer-specific.
func (s *InteractionService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	if viewerID == 0 {
		var post *models.Post
		err := cache.Aside(ctx, cache.PostKey(postID), &post, cache.PostTTL, func() error {
			fetched, err := s.postRepo.GetByID(ctx, postID, 0)
			if err != nil {
				return err
			}
			post = fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		return post, nil
	}
	return s.postRepo.GetByID(ctx, postID, viewerID)
}
